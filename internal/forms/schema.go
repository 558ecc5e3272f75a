package forms

// Field kinds determine the coercion applied by Validate.
type Kind int

const (
	KindString Kind = iota
	KindText
	KindEmail
	KindDate
	KindNumber
	KindEnum
)

type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Enum     []string
}

// Descriptor defines one form type end to end: its field schema, the CMS
// collection its mirror copy lands in, and whether a multipart attachment
// may accompany it. Adding a form type means adding a descriptor here; the
// pipeline itself is shared.
type Descriptor struct {
	Type            string
	Title           string
	Resource        string
	Fields          []Field
	AllowAttachment bool
}

// EmailField returns the name of the field holding the submitter's address.
func (d *Descriptor) EmailField() string {
	for _, f := range d.Fields {
		if f.Kind == KindEmail {
			return f.Name
		}
	}
	return ""
}

var registry = []*Descriptor{
	{
		Type:     "sponsorship",
		Title:    "Puja Sponsorship",
		Resource: "puja-sponsorships",
		Fields: []Field{
			{Name: "devoteeName", Label: "Devotee Name", Kind: KindString, Required: true},
			{Name: "email", Label: "Email", Kind: KindEmail, Required: true},
			{Name: "phone", Label: "Phone", Kind: KindString, Required: true},
			{Name: "pujaId", Label: "Puja", Kind: KindString, Required: true},
			{Name: "sponsorshipDate", Label: "Sponsorship Date", Kind: KindDate, Required: true},
			{Name: "gotra", Label: "Gotra", Kind: KindString},
			{Name: "notes", Label: "Notes", Kind: KindText},
		},
	},
	{
		Type:            "facility-request",
		Title:           "Facility Request",
		Resource:        "facility-requests",
		AllowAttachment: true,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindString, Required: true},
			{Name: "email", Label: "Email", Kind: KindEmail, Required: true},
			{Name: "phone", Label: "Phone", Kind: KindString, Required: true},
			{Name: "facility", Label: "Facility", Kind: KindEnum, Required: true,
				Enum: []string{"main-hall", "dining-hall", "classroom", "lawn"}},
			{Name: "eventDate", Label: "Event Date", Kind: KindDate, Required: true},
			{Name: "attendees", Label: "Expected Attendees", Kind: KindNumber, Required: true},
			{Name: "purpose", Label: "Purpose", Kind: KindText},
		},
	},
	{
		Type:            "donation-statement",
		Title:           "Donation Statement Request",
		Resource:        "donation-statement-requests",
		AllowAttachment: true,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindString, Required: true},
			{Name: "email", Label: "Email", Kind: KindEmail, Required: true},
			{Name: "taxYear", Label: "Tax Year", Kind: KindNumber, Required: true},
			{Name: "mailingAddress", Label: "Mailing Address", Kind: KindText},
		},
	},
	{
		Type:     "change-of-address",
		Title:    "Change of Address",
		Resource: "address-changes",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindString, Required: true},
			{Name: "email", Label: "Email", Kind: KindEmail, Required: true},
			{Name: "phone", Label: "Phone", Kind: KindString},
			{Name: "oldAddress", Label: "Old Address", Kind: KindText, Required: true},
			{Name: "newAddress", Label: "New Address", Kind: KindText, Required: true},
		},
	},
	{
		Type:     "email-subscription",
		Title:    "Email Subscription",
		Resource: "email-subscriptions",
		Fields: []Field{
			{Name: "email", Label: "Email", Kind: KindEmail, Required: true},
			{Name: "name", Label: "Name", Kind: KindString},
		},
	},
}

var registryByType = func() map[string]*Descriptor {
	m := make(map[string]*Descriptor, len(registry))
	for _, d := range registry {
		m[d.Type] = d
	}
	return m
}()

func Lookup(formType string) (*Descriptor, bool) {
	d, ok := registryByType[formType]
	return d, ok
}

func Descriptors() []*Descriptor {
	return registry
}
