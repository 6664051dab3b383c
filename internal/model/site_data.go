package model

// SiteData is the whole persisted state of a documentation site.
type SiteData struct {
	Pages      []Page     `json:"pages"`
	Categories []Category `json:"categories"`
}

func EmptySiteData() *SiteData {
	return &SiteData{Pages: []Page{}, Categories: []Category{}}
}

// Normalize replaces nil collections with empty ones so the JSON form is
// always {"pages": [], "categories": []}.
func (d *SiteData) Normalize() *SiteData {
	if d == nil {
		return EmptySiteData()
	}
	if d.Pages == nil {
		d.Pages = []Page{}
	}
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	for i := range d.Pages {
		if d.Pages[i].Tags == nil {
			d.Pages[i].Tags = []string{}
		}
	}
	return d
}

func (d *SiteData) Clone() *SiteData {
	if d == nil {
		return EmptySiteData()
	}
	out := &SiteData{
		Pages:      make([]Page, 0, len(d.Pages)),
		Categories: make([]Category, len(d.Categories)),
	}
	for _, p := range d.Pages {
		out.Pages = append(out.Pages, p.Clone())
	}
	copy(out.Categories, d.Categories)
	return out
}

func (d *SiteData) PageIndex(id string) int {
	for i := range d.Pages {
		if d.Pages[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *SiteData) CategoryIndex(id string) int {
	for i := range d.Categories {
		if d.Categories[i].ID == id {
			return i
		}
	}
	return -1
}
