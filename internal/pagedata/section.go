// internal/pagedata/section.go
//
// Section variants.
//
// Context
// -------
// A section is a closed tagged union keyed by its "type" field.  Each known
// kind decodes into its own struct, and go-playground/validator tags mark the
// fields a renderer cannot do without.  Anything else, whether the type is
// unrecognized or the entry is structurally incomplete, becomes Unknown.
// Unknown keeps the original bytes so a re-marshal hands editors back what
// they stored, and it is never rendered.  Typed variants carry the keys they
// do not declare in Extras, verbatim, and emit them again on marshal.
//
// Notes
// -----
// • Adding a kind means one struct, one Kind constant, and one line in the
//   decoders table.
// • richtext bodies are HTML and pass through the bluemonday UGC policy on
//   decode; every other field is plain text escaped by html/template.

package pagedata

import (
	"encoding/json"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Kind is the discriminator stored in a section's "type" field.
type Kind string

const (
	KindHero         Kind = "hero"
	KindServices     Kind = "services"
	KindRichText     Kind = "richtext"
	KindValues       Kind = "values"
	KindContactCard  Kind = "contact_card"
	KindBackedBy     Kind = "backed_by"
	KindUseCases     Kind = "use_cases"
	KindTestimonials Kind = "testimonials"
	KindGallery      Kind = "gallery"
	KindFAQ          Kind = "faq"
	KindTeam         Kind = "team"
)

// Kinds lists every recognized section kind.
func Kinds() []Kind {
	return []Kind{
		KindHero, KindServices, KindRichText, KindValues, KindContactCard,
		KindBackedBy, KindUseCases, KindTestimonials, KindGallery, KindFAQ,
		KindTeam,
	}
}

// Section is implemented by every variant, Unknown included.
type Section interface {
	Kind() Kind
}

//
// Shared item shapes
//

type Item struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
}

type Logo struct {
	Name     string `json:"name" validate:"required"`
	ImageURL string `json:"imageUrl,omitempty"`
	Href     string `json:"href,omitempty"`
}

type Testimonial struct {
	Quote  string `json:"quote" validate:"required"`
	Author string `json:"author" validate:"required"`
	Role   string `json:"role,omitempty"`
}

type Image struct {
	Src string `json:"src" validate:"required"`
	Alt string `json:"alt,omitempty"`
}

type Question struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

type Member struct {
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

//
// Variants
//

type Hero struct {
	Extras `json:"-"`
	Type     Kind   `json:"type"`
	Headline string `json:"headline" validate:"required"`
	Subtext  string `json:"subtext" validate:"required"`
	CTAText  string `json:"ctaText" validate:"required"`
	CTAHref  string `json:"ctaHref" validate:"required"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type Services struct {
	Extras `json:"-"`
	Type     Kind   `json:"type"`
	Title    string `json:"title" validate:"required"`
	Subtitle string `json:"subtitle,omitempty"`
	Items    []Item `json:"items" validate:"min=1,dive"`
}

type RichText struct {
	Extras `json:"-"`
	Type  Kind   `json:"type"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body" validate:"required"`
}

type Values struct {
	Extras `json:"-"`
	Type  Kind   `json:"type"`
	Title string `json:"title" validate:"required"`
	Items []Item `json:"items" validate:"min=1,dive"`
}

type ContactCard struct {
	Extras `json:"-"`
	Type          Kind   `json:"type"`
	Title         string `json:"title" validate:"required"`
	ShowPhone     bool   `json:"showPhone"`
	ShowEmail     bool   `json:"showEmail"`
	ShowAddress   bool   `json:"showAddress"`
	ShowMessaging bool   `json:"showMessaging"`
}

type BackedBy struct {
	Extras `json:"-"`
	Type  Kind   `json:"type"`
	Title string `json:"title" validate:"required"`
	Logos []Logo `json:"logos" validate:"min=1,dive"`
}

type UseCases struct {
	Extras `json:"-"`
	Type  Kind   `json:"type"`
	Title string `json:"title" validate:"required"`
	Items []Item `json:"items" validate:"min=1,dive"`
}

type Testimonials struct {
	Extras `json:"-"`
	Type  Kind          `json:"type"`
	Title string        `json:"title" validate:"required"`
	Items []Testimonial `json:"items" validate:"min=1,dive"`
}

type Gallery struct {
	Extras `json:"-"`
	Type   Kind    `json:"type"`
	Title  string  `json:"title,omitempty"`
	Images []Image `json:"images" validate:"min=1,dive"`
}

type FAQ struct {
	Extras `json:"-"`
	Type  Kind       `json:"type"`
	Title string     `json:"title" validate:"required"`
	Items []Question `json:"items" validate:"min=1,dive"`
}

type Team struct {
	Extras `json:"-"`
	Type    Kind     `json:"type"`
	Title   string   `json:"title" validate:"required"`
	Members []Member `json:"members" validate:"min=1,dive"`
}

func (Hero) Kind() Kind         { return KindHero }
func (Services) Kind() Kind     { return KindServices }
func (RichText) Kind() Kind     { return KindRichText }
func (Values) Kind() Kind       { return KindValues }
func (ContactCard) Kind() Kind  { return KindContactCard }
func (BackedBy) Kind() Kind     { return KindBackedBy }
func (UseCases) Kind() Kind     { return KindUseCases }
func (Testimonials) Kind() Kind { return KindTestimonials }
func (Gallery) Kind() Kind      { return KindGallery }
func (FAQ) Kind() Kind          { return KindFAQ }
func (Team) Kind() Kind         { return KindTeam }

// Extras holds the undeclared keys of a typed section as raw JSON.
type Extras struct {
	fields map[string]json.RawMessage
}

func (e Extras) extraFields() map[string]json.RawMessage { return e.fields }

func (e *Extras) setExtraFields(m map[string]json.RawMessage) { e.fields = m }

// Unknown is an entry that could not be typed.  Type is the raw "type" value
// when it was a string, Raw the original object, Reason a short diagnostic.
type Unknown struct {
	Type   string
	Raw    json.RawMessage
	Reason string
}

func (u Unknown) Kind() Kind { return Kind(u.Type) }

// MarshalJSON re-emits the stored object untouched.
func (u Unknown) MarshalJSON() ([]byte, error) {
	if len(u.Raw) == 0 {
		return []byte("null"), nil
	}
	return u.Raw, nil
}

//
// Decoding
//

var (
	validate = validator.New()
	ugc      = bluemonday.UGCPolicy()
)

// sanitizer is implemented by variants that carry HTML.
type sanitizer interface {
	sanitized() Section
}

func (r RichText) sanitized() Section {
	r.Body = ugc.Sanitize(r.Body)
	return r
}

var decoders = map[Kind]func([]byte) (Section, error){
	KindHero:         decodeAs[Hero],
	KindServices:     decodeAs[Services],
	KindRichText:     decodeAs[RichText],
	KindValues:       decodeAs[Values],
	KindContactCard:  decodeAs[ContactCard],
	KindBackedBy:     decodeAs[BackedBy],
	KindUseCases:     decodeAs[UseCases],
	KindTestimonials: decodeAs[Testimonials],
	KindGallery:      decodeAs[Gallery],
	KindFAQ:          decodeAs[FAQ],
	KindTeam:         decodeAs[Team],
}

func decodeAs[T Section](raw []byte) (Section, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	extra, err := undeclared(raw, v)
	if err != nil {
		return nil, err
	}
	if x, ok := any(&v).(interface {
		setExtraFields(map[string]json.RawMessage)
	}); ok && len(extra) > 0 {
		x.setExtraFields(extra)
	}
	var sec Section = v
	if s, ok := sec.(sanitizer); ok {
		sec = s.sanitized()
	}
	if err := validate.Struct(sec); err != nil {
		return nil, err
	}
	return sec, nil
}

// undeclared returns the keys of raw that typed does not marshal.
func undeclared(raw []byte, typed any) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}
	out, err := json.Marshal(typed)
	if err != nil {
		return nil, err
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(out, &known); err != nil {
		return nil, err
	}
	for k := range known {
		delete(all, k)
	}
	return all, nil
}

// marshalSection encodes s and appends the undeclared keys it carries.
func marshalSection(s Section) (json.RawMessage, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	x, ok := s.(interface {
		extraFields() map[string]json.RawMessage
	})
	if !ok || len(x.extraFields()) == 0 {
		return b, nil
	}
	return appendFields(b, x.extraFields())
}

// appendFields adds fields, sorted by key, to the JSON object obj.
func appendFields(obj []byte, fields map[string]json.RawMessage) ([]byte, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := append([]byte(nil), obj[:len(obj)-1]...)
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		if len(out) > 1 {
			out = append(out, ',')
		}
		out = append(out, name...)
		out = append(out, ':')
		out = append(out, fields[k]...)
	}
	return append(out, '}'), nil
}

// decodeSection types one sanitized entry.  raw is the entry as stored.
func decodeSection(obj map[string]any, raw json.RawMessage) Section {
	typ, _ := obj["type"].(string)
	dec, ok := decoders[Kind(typ)]
	if !ok {
		return Unknown{Type: typ, Raw: raw, Reason: "unrecognized section type"}
	}
	sec, err := dec(raw)
	if err != nil {
		return Unknown{Type: typ, Raw: raw, Reason: err.Error()}
	}
	return sec
}
