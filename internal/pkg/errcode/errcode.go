package errcode

const (
	ErrInvalid = 10000001 + iota
	ErrStorage
)
