package types

import (
	"slices"
	"strings"
)

type ProductId uint

type StockStatus string

const (
	InStock    StockStatus = "in-stock"
	LowStock   StockStatus = "limited"
	OutOfStock StockStatus = "out-of-stock"
	OnRequest  StockStatus = "on-request"
)

type Manufacturer struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	Id   uint         `json:"id"`
	Name string       `json:"name"`
	Kind CategoryKind `json:"kind,omitempty"`
}

type Application struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

type Certification struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

type Image struct {
	Id          uint   `json:"id"`
	Title       string `json:"title"`
	Url         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type Document struct {
	Id    uint   `json:"id"`
	Title string `json:"title"`
	Url   string `json:"url"`
	Type  string `json:"type"`
}

// ProductOption is an orderable variant of a part (package, reel/tray, moq).
type ProductOption struct {
	Id            uint     `json:"id"`
	Name          string   `json:"option_name"`
	PackageTypes  []string `json:"package_types,omitempty"`
	PackageDetail string   `json:"package_detail,omitempty"`
	MountingStyle string   `json:"mounting_style,omitempty"`
	StorageType   string   `json:"storage_type,omitempty"`
	MoqStart      int      `json:"moq_start,omitempty"`
	MoqStep       int      `json:"moq_step,omitempty"`
	LeadTime      string   `json:"lead_time_range,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

type Product struct {
	Id             ProductId       `json:"id"`
	Name           string          `json:"name"`
	Subtitle       string          `json:"subtitle,omitempty"`
	PartNumber     string          `json:"part_number"`
	Description    string          `json:"description,omitempty"`
	Category       Category        `json:"category"`
	Categories     []Category      `json:"categories,omitempty"`
	Manufacturer   *Manufacturer   `json:"manufacturer,omitempty"`
	Applications   []Application   `json:"applications,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
	Features       []string        `json:"features,omitempty"`
	Stock          StockStatus     `json:"stock,omitempty"`
	Images         []Image         `json:"images,omitempty"`
	Documents      []Document      `json:"documents,omitempty"`
	Options        []ProductOption `json:"options,omitempty"`
	Specification  Specification   `json:"specifications"`
	Created        int64           `json:"created,omitempty"`
	LastUpdate     int64           `json:"lastUpdate,omitempty"`
	Deleted        bool            `json:"deleted,omitempty"`
}

func (p *Product) GetId() ProductId {
	return p.Id
}

func (p *Product) GetManufacturerName() string {
	if p.Manufacturer == nil {
		return ""
	}
	return p.Manufacturer.Name
}

// CategoryNames lists the primary category followed by any extra ones, without duplicates.
func (p *Product) CategoryNames() []string {
	ret := make([]string, 0, len(p.Categories)+1)
	if p.Category.Name != "" {
		ret = append(ret, p.Category.Name)
	}
	for _, c := range p.Categories {
		if c.Name != "" && !slices.Contains(ret, c.Name) {
			ret = append(ret, c.Name)
		}
	}
	return ret
}

func (p *Product) ApplicationNames() []string {
	ret := make([]string, 0, len(p.Applications))
	for _, a := range p.Applications {
		ret = append(ret, a.Name)
	}
	return ret
}

func (p *Product) CertificationNames() []string {
	ret := make([]string, 0, len(p.Certifications))
	for _, c := range p.Certifications {
		ret = append(ret, c.Name)
	}
	return ret
}

// PackageTypes merges the package type from the specification with the ones on the options.
func (p *Product) PackageTypes() []string {
	ret := make([]string, 0, 2)
	if v := p.Specification.PackageType(); v != "" {
		ret = append(ret, v)
	}
	for _, o := range p.Options {
		for _, pt := range o.PackageTypes {
			if pt != "" && !slices.Contains(ret, pt) {
				ret = append(ret, pt)
			}
		}
	}
	return ret
}

func (p *Product) MountingTypes() []string {
	ret := make([]string, 0, 2)
	if v := p.Specification.MountingType(); v != "" {
		ret = append(ret, v)
	}
	for _, o := range p.Options {
		if o.MountingStyle != "" && !slices.Contains(ret, o.MountingStyle) {
			ret = append(ret, o.MountingStyle)
		}
	}
	return ret
}

func (p *Product) Kind() CategoryKind {
	if k := p.Specification.Kind(); k != "" {
		return k
	}
	if p.Category.Kind != "" {
		return p.Category.Kind
	}
	return CategoryGeneric
}

func (p *Product) Validate() error {
	if p.Id == 0 {
		return invalidProduct("missing id")
	}
	if strings.TrimSpace(p.Name) == "" {
		return invalidProduct("missing name")
	}
	return p.Specification.Validate()
}

func (p *Product) ToStringList() []string {
	return []string{p.Name, p.Subtitle, p.Description, p.PartNumber, p.GetManufacturerName()}
}
