package revision

import (
	"fmt"

	"github.com/tarantool/go-revision/codec"
)

// EnumVariant is one member of a revisioned enum.
type EnumVariant[E comparable] struct {
	Name       string
	Tag        uint8
	Value      E
	Descriptor Descriptor
	// Convert maps a retired variant read from an old record onto a live
	// value. Required when Descriptor has an end revision.
	Convert func(revision uint16) (E, error)
}

// Enum is the variant table of a closed enumeration E. Each value is written
// as its own revision header followed by a one-byte tag.
type Enum[E comparable] struct {
	name     string
	revision uint16
	variants []EnumVariant[E]
}

// NewEnum creates an enum schema at the given current revision.
func NewEnum[E comparable](name string, revision uint16, variants ...EnumVariant[E]) (*Enum[E], error) {
	enum := &Enum[E]{
		name:     name,
		revision: revision,
		variants: append([]EnumVariant[E](nil), variants...),
	}

	if err := enum.check(); err != nil {
		return nil, err
	}

	return enum, nil
}

// MustEnum is like NewEnum but panics on an invalid enum.
func MustEnum[E comparable](name string, revision uint16, variants ...EnumVariant[E]) *Enum[E] {
	enum, err := NewEnum(name, revision, variants...)
	if err != nil {
		panic(err)
	}

	return enum
}

func (e *Enum[E]) check() error {
	switch {
	case e.name == "":
		return errSchema("<unnamed>", "", "type name is empty")
	case e.revision == 0:
		return errSchema(e.name, "", "current revision must be at least 1")
	case len(e.variants) == 0:
		return errSchema(e.name, "", "enum has no variants")
	}

	names := make(map[string]struct{}, len(e.variants))
	tags := make(map[uint8]struct{}, len(e.variants))
	values := make(map[E]struct{}, len(e.variants))

	for _, variant := range e.variants {
		if variant.Name == "" {
			return errSchema(e.name, "", "variant name is empty")
		}

		if _, ok := names[variant.Name]; ok {
			return errSchema(e.name, variant.Name, "duplicate variant")
		}

		names[variant.Name] = struct{}{}

		if _, ok := tags[variant.Tag]; ok {
			return errSchema(e.name, variant.Name, fmt.Sprintf("duplicate tag %d", variant.Tag))
		}

		tags[variant.Tag] = struct{}{}

		if reason := variant.Descriptor.check(e.revision); reason != "" {
			return errSchema(e.name, variant.Name, reason)
		}

		retired := variant.Descriptor.Retired()

		switch {
		case retired && variant.Convert == nil:
			return errSchema(e.name, variant.Name, "retired variant requires a conversion function")
		case !retired && variant.Convert != nil:
			return errSchema(e.name, variant.Name, "retired variant requires an end revision")
		case retired:
			continue
		}

		if _, ok := values[variant.Value]; ok {
			return errSchema(e.name, variant.Name, "duplicate value")
		}

		values[variant.Value] = struct{}{}
	}

	return nil
}

// Name returns the type name used in errors.
func (e *Enum[E]) Name() string {
	return e.name
}

// Revision returns the current revision of the type.
func (e *Enum[E]) Revision() uint16 {
	return e.revision
}

// Variants describes the whole variant table in declared order.
func (e *Enum[E]) Variants() []FieldInfo {
	out := make([]FieldInfo, 0, len(e.variants))
	for _, variant := range e.variants {
		out = append(out, FieldInfo{
			Name:       variant.Name,
			Descriptor: variant.Descriptor,
			Retired:    variant.Descriptor.Retired(),
		})
	}

	return out
}

func (e *Enum[E]) live(v E) (EnumVariant[E], bool) {
	for _, variant := range e.variants {
		if variant.Value == v && variant.Descriptor.LiveAt(e.revision) {
			return variant, true
		}
	}

	return EnumVariant[E]{}, false //nolint:exhaustruct
}

// Tag returns the tag of a live value.
func (e *Enum[E]) Tag(v E) (uint8, bool) {
	variant, ok := e.live(v)

	return variant.Tag, ok
}

// VariantName returns the declared name of a live value.
func (e *Enum[E]) VariantName(v E) (string, bool) {
	variant, ok := e.live(v)

	return variant.Name, ok
}

// FromTag returns the live value with the given tag. Tags outside of the
// closed set, including anything above 255, are not found.
func (e *Enum[E]) FromTag(tag uint64) (E, bool) {
	for _, variant := range e.variants {
		if uint64(variant.Tag) == tag && variant.Descriptor.LiveAt(e.revision) {
			return variant.Value, true
		}
	}

	var zero E

	return zero, false
}

// FromName returns the live value with the given variant name.
func (e *Enum[E]) FromName(name string) (E, bool) {
	for _, variant := range e.variants {
		if variant.Name == name && variant.Descriptor.LiveAt(e.revision) {
			return variant.Value, true
		}
	}

	var zero E

	return zero, false
}

// Encode writes the current revision and the tag of v.
func (e *Enum[E]) Encode(w codec.Writer, v E) error {
	variant, ok := e.live(v)
	if !ok {
		return errEncode(e.name, "", fmt.Errorf("%w: %v", ErrUnknownVariant, v))
	}

	if err := w.WriteUint16(e.revision); err != nil {
		return errEncode(e.name, headerField, err)
	}

	if err := w.WriteUint8(variant.Tag); err != nil {
		return errEncode(e.name, "tag", err)
	}

	return nil
}

// Decode reads a value written at any revision up to the current one.
func (e *Enum[E]) Decode(r codec.Reader) (E, error) {
	return e.DecodeRevision(r, e.revision)
}

// DecodeRevision reads a value as code that knows revisions up to known
// would. A tag that does not name a variant live at the record's revision
// is an InvalidTagError.
func (e *Enum[E]) DecodeRevision(r codec.Reader, known uint16) (E, error) {
	var zero E

	if known == 0 || known > e.revision {
		return zero, errInvalidRevision(e.name, known, e.revision)
	}

	revision, err := readHeader(e.name, r, known)
	if err != nil {
		return zero, err
	}

	tag, err := r.ReadUint8()
	if err != nil {
		return zero, errFormat(e.name, "tag", err)
	}

	for _, variant := range e.variants {
		if variant.Tag != tag || !variant.Descriptor.LiveAt(revision) {
			continue
		}

		if variant.Convert == nil {
			return variant.Value, nil
		}

		out, err := variant.Convert(revision)
		if err != nil {
			return zero, errConversion(e.name, variant.Name, revision, err)
		}

		return out, nil
	}

	return zero, errInvalidTag(e.name, tag, revision)
}
