package model

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
	IconColor   string `json:"iconColor,omitempty"`
	Order       int    `json:"order"`
	CreatedAt   string `json:"createdAt"`
}
