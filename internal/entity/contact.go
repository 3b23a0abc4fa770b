package entity

// ContactRecord is the fixed-shape record produced for one business card.
// A nil field is absent and encodes as JSON null.
type ContactRecord struct {
	OrganizationName   *string `json:"organization_name"`
	PrimaryPhoneNumber *string `json:"primary_phone_number"`
	OtherPhoneNumber   *string `json:"other_phone_number"`
	Email              *string `json:"email"`
	Industry           *string `json:"industry"`
	City               *string `json:"city"`
	Country            *string `json:"country"`
	Website            *string `json:"website"`
}

// Platform names a social network tracked by the social handle detector.
type Platform string

const (
	Facebook  Platform = "facebook"
	Instagram Platform = "instagram"
	Twitter   Platform = "twitter"
)

// Platforms lists every tracked platform in a stable order.
var Platforms = []Platform{Facebook, Instagram, Twitter}

// Str returns a pointer to s, or nil when s is empty.
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns *p, or "" for a nil pointer.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// At returns a pointer to list[i] when it exists.
func At(list []string, i int) *string {
	if i < 0 || i >= len(list) {
		return nil
	}
	return Str(list[i])
}
