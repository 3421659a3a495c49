package revision_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarantool/go-revision"
	"github.com/tarantool/go-revision/codec"
)

type Color uint8

const (
	Red Color = iota
	Green
	Blue
	Yellow
)

type Widget struct {
	Name      string
	Color     Color
	SizeBytes uint64
	Enabled   bool
	Count     int
}

var errSinkClosed = errors.New("sink closed")

type failingWriter struct {
	budget int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if len(p) > f.budget {
		return 0, errSinkClosed
	}

	f.budget -= len(p)

	return len(p), nil
}

func blueToGreen(uint16) (Color, error) {
	return Green, nil
}

var colors = revision.MustEnum("Color", 2,
	revision.EnumVariant[Color]{
		Name: "red", Tag: 0, Value: Red, Descriptor: revision.Always(), Convert: nil,
	},
	revision.EnumVariant[Color]{
		Name: "green", Tag: 1, Value: Green, Descriptor: revision.Always(), Convert: nil,
	},
	revision.EnumVariant[Color]{
		Name: "blue", Tag: 2, Value: Blue, Descriptor: revision.Between(1, 2), Convert: blueToGreen,
	},
	revision.EnumVariant[Color]{
		Name: "yellow", Tag: 3, Value: Yellow, Descriptor: revision.Since(2), Convert: nil,
	},
)

func defaultWidget() Widget {
	return Widget{
		Name:      "",
		Color:     Red,
		SizeBytes: 4096,
		Enabled:   true,
		Count:     1,
	}
}

func sizeFromKilobytes(dst *Widget, _ uint16, kb uint32) error {
	dst.SizeBytes = uint64(kb) * 1024

	return nil
}

var widgets = revision.MustSchema("Widget", 3, defaultWidget,
	revision.NewField("name", revision.Always(), revision.String(),
		func(w *Widget) *string { return &w.Name }),
	revision.NewField("color", revision.Always(), revision.Variant(colors),
		func(w *Widget) *Color { return &w.Color }),
	revision.NewRetiredField("size_kb", revision.Between(1, 2), revision.Uint32(), sizeFromKilobytes),
	revision.NewField("size", revision.Since(2), revision.Uint64(),
		func(w *Widget) *uint64 { return &w.SizeBytes }),
	revision.NewRetiredField("legacy_flag", revision.Between(1, 3), revision.Bool(), revision.Ignore[Widget, bool]),
	revision.NewField("enabled", revision.Since(3), revision.Bool(),
		func(w *Widget) *bool { return &w.Enabled }),
	revision.NewField("count", revision.Always(), revision.Int(),
		func(w *Widget) *int { return &w.Count }),
)

// stream builds a record by hand with the binary codec.
func stream(t *testing.T, build func(w *codec.BinaryWriter)) []byte {
	t.Helper()

	var buf bytes.Buffer

	build(codec.NewBinaryWriter(&buf))

	return buf.Bytes()
}

func revision1Widget(t *testing.T, colorTag uint8) []byte {
	t.Helper()

	return stream(t, func(w *codec.BinaryWriter) {
		require.NoError(t, w.WriteUint16(1))
		require.NoError(t, w.WriteString("legacy"))
		require.NoError(t, w.WriteUint16(1))
		require.NoError(t, w.WriteUint8(colorTag))
		require.NoError(t, w.WriteUint32(2))
		require.NoError(t, w.WriteBool(true))
		require.NoError(t, w.WriteUint64(5))
	})
}

func revision2Widget(t *testing.T) []byte {
	t.Helper()

	return stream(t, func(w *codec.BinaryWriter) {
		require.NoError(t, w.WriteUint16(2))
		require.NoError(t, w.WriteString("two"))
		require.NoError(t, w.WriteUint16(2))
		require.NoError(t, w.WriteUint8(3))
		require.NoError(t, w.WriteUint64(777))
		require.NoError(t, w.WriteBool(false))
		require.NoError(t, w.WriteUint64(9))
	})
}

func TestDescriptor_LiveAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		desc     revision.Descriptor
		revision uint16
		expected bool
	}{
		{"always at 1", revision.Always(), 1, true},
		{"always at max", revision.Always(), 65535, true},
		{"before start", revision.Since(3), 2, false},
		{"at start", revision.Since(3), 3, true},
		{"inside range", revision.Between(1, 3), 2, true},
		{"at end", revision.Between(1, 3), 3, false},
		{"after end", revision.Between(1, 3), 4, false},
		{"zero revision", revision.Always(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.desc.LiveAt(tt.revision))
		})
	}
}

func TestDescriptor_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[1, 2)", revision.Between(1, 2).String())
	assert.Equal(t, "[3, -)", revision.Since(3).String())
	assert.True(t, revision.Between(1, 2).Retired())
	assert.False(t, revision.Since(3).Retired())
}

func TestSchema_Encode_Layout(t *testing.T) {
	t.Parallel()

	data, err := widgets.Marshal(Widget{Name: "ab", Color: Yellow, SizeBytes: 10, Enabled: false, Count: 3})
	require.NoError(t, err)

	expected := []byte{
		0x03, 0x00, // revision
		0x02, 0, 0, 0, 0, 0, 0, 0, 'a', 'b', // name
		0x02, 0x00, 0x03, // color: own revision, tag
		0x0A, 0, 0, 0, 0, 0, 0, 0, // size
		0x00,                      // enabled
		0x03, 0, 0, 0, 0, 0, 0, 0, // count
	}
	assert.Equal(t, expected, data)
}

func TestSchema_RoundTrip(t *testing.T) {
	t.Parallel()

	values := []Widget{
		defaultWidget(),
		{Name: "/var/lib/db", Color: Green, SizeBytes: 1 << 40, Enabled: false, Count: -7},
		{Name: "", Color: Yellow, SizeBytes: 0, Enabled: true, Count: 0},
	}

	for _, format := range []codec.Format{codec.FormatBinary, codec.FormatMsgpack} {
		t.Run(format.String(), func(t *testing.T) {
			t.Parallel()

			for _, value := range values {
				var buf bytes.Buffer

				writer, err := codec.NewWriter(format, &buf)
				require.NoError(t, err)
				require.NoError(t, widgets.Encode(writer, &value))

				reader, err := codec.NewReader(format, &buf)
				require.NoError(t, err)

				decoded, err := widgets.Decode(reader)
				require.NoError(t, err)
				assert.Equal(t, value, decoded)
				assert.Zero(t, buf.Len())
			}
		})
	}
}

func TestSchema_Decode_Revision1(t *testing.T) {
	t.Parallel()

	decoded, err := widgets.Unmarshal(revision1Widget(t, 2))
	require.NoError(t, err)

	expected := Widget{
		Name:      "legacy",
		Color:     Green,
		SizeBytes: 2048,
		Enabled:   true,
		Count:     5,
	}
	assert.Equal(t, expected, decoded)
}

func TestSchema_Decode_Revision2(t *testing.T) {
	t.Parallel()

	decoded, err := widgets.Unmarshal(revision2Widget(t))
	require.NoError(t, err)

	expected := Widget{
		Name:      "two",
		Color:     Yellow,
		SizeBytes: 777,
		Enabled:   true,
		Count:     9,
	}
	assert.Equal(t, expected, decoded)
}

func TestSchema_DecodeRevision_OlderKnown(t *testing.T) {
	t.Parallel()

	decoded, err := widgets.DecodeRevision(codec.NewBinaryReader(bytes.NewReader(revision2Widget(t))), 2)
	require.NoError(t, err)
	assert.Equal(t, "two", decoded.Name)
	assert.True(t, decoded.Enabled)

	current, err := widgets.Marshal(defaultWidget())
	require.NoError(t, err)

	_, err = widgets.DecodeRevision(codec.NewBinaryReader(bytes.NewReader(current)), 2)
	require.ErrorIs(t, err, revision.ErrFutureRevision)
}

func TestSchema_Decode_FixedPoint(t *testing.T) {
	t.Parallel()

	legacy, err := widgets.Unmarshal(revision1Widget(t, 0))
	require.NoError(t, err)

	data, err := widgets.Marshal(legacy)
	require.NoError(t, err)

	header, err := widgets.Header(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), header)

	again, err := widgets.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, legacy, again)

	reencoded, err := widgets.Marshal(again)
	require.NoError(t, err)
	assert.Equal(t, data, reencoded)
}

func TestSchema_Decode_FutureRevision(t *testing.T) {
	t.Parallel()

	data := []byte{0x04, 0x00, 0xFF}

	_, err := widgets.Unmarshal(data)
	require.ErrorIs(t, err, revision.ErrFutureRevision)

	var future revision.FutureRevisionError
	require.ErrorAs(t, err, &future)
	assert.Equal(t, "Widget", future.Type)
	assert.Equal(t, uint16(4), future.Revision)
	assert.Equal(t, uint16(3), future.Known)
	assert.NotErrorIs(t, err, revision.ErrFormat)
}

func TestSchema_Decode_ZeroRevision(t *testing.T) {
	t.Parallel()

	_, err := widgets.Unmarshal([]byte{0x00, 0x00})
	require.ErrorIs(t, err, revision.ErrFormat)
	require.ErrorIs(t, err, revision.ErrZeroRevision)

	_, err = widgets.Header([]byte{0x00, 0x00})
	require.ErrorIs(t, err, revision.ErrZeroRevision)
}

func TestSchema_Decode_Truncated(t *testing.T) {
	t.Parallel()

	full := revision2Widget(t)

	tests := []struct {
		name  string
		data  []byte
		field string
	}{
		{"empty", nil, "revision"},
		{"half header", full[:1], "revision"},
		{"inside name", full[:6], "name"},
		{"missing count", full[:len(full)-8], "count"},
		{"inside count", full[:len(full)-1], "count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := widgets.Unmarshal(tt.data)
			require.ErrorIs(t, err, revision.ErrFormat)

			var format revision.FormatError
			require.ErrorAs(t, err, &format)
			assert.Equal(t, "Widget", format.Type)
			assert.Equal(t, tt.field, format.Field)
		})
	}
}

func TestSchema_Decode_InvalidTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		tag      uint8
		revision uint16
	}{
		{"unknown tag", revision1Widget(t, 9), 9, 1},
		{"variant introduced later", revision1Widget(t, 3), 3, 1},
		{"retired variant", stream(t, func(w *codec.BinaryWriter) {
			require.NoError(t, w.WriteUint16(3))
			require.NoError(t, w.WriteString("x"))
			require.NoError(t, w.WriteUint16(2))
			require.NoError(t, w.WriteUint8(2))
		}), 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := widgets.Unmarshal(tt.data)
			require.ErrorIs(t, err, revision.ErrInvalidTag)
			assert.NotErrorIs(t, err, revision.ErrFormat)

			var invalid revision.InvalidTagError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, "Color", invalid.Type)
			assert.Equal(t, tt.tag, invalid.Tag)
			assert.Equal(t, tt.revision, invalid.Revision)
		})
	}
}

func TestSchema_Decode_ConversionError(t *testing.T) {
	t.Parallel()

	errTooLarge := errors.New("legacy size too large")

	schema, err := revision.NewSchema("Widget", 3, defaultWidget,
		revision.NewField("name", revision.Always(), revision.String(),
			func(w *Widget) *string { return &w.Name }),
		revision.NewField("color", revision.Always(), revision.Variant(colors),
			func(w *Widget) *Color { return &w.Color }),
		revision.NewRetiredField("size_kb", revision.Between(1, 2), revision.Uint32(),
			func(*Widget, uint16, uint32) error { return errTooLarge }),
	)
	require.NoError(t, err)

	_, err = schema.Decode(codec.NewBinaryReader(bytes.NewReader(revision1Widget(t, 0))))
	require.ErrorIs(t, err, revision.ErrConversion)
	require.ErrorIs(t, err, errTooLarge)

	var conversion revision.ConversionError
	require.ErrorAs(t, err, &conversion)
	assert.Equal(t, "Widget", conversion.Type)
	assert.Equal(t, "size_kb", conversion.Field)
	assert.Equal(t, uint16(1), conversion.Revision)
}

func TestSchema_DecodeRevision_InvalidKnown(t *testing.T) {
	t.Parallel()

	for _, known := range []uint16{0, 4} {
		_, err := widgets.DecodeRevision(codec.NewBinaryReader(bytes.NewReader(revision2Widget(t))), known)
		require.ErrorIs(t, err, revision.ErrInvalidRevision)

		var invalid revision.InvalidRevisionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, known, invalid.Known)
		assert.Equal(t, uint16(3), invalid.Current)
	}
}

func TestSchema_Unmarshal_TrailingData(t *testing.T) {
	t.Parallel()

	data := append(revision2Widget(t), 0x00)

	_, err := widgets.Unmarshal(data)
	require.ErrorIs(t, err, revision.ErrFormat)
	require.ErrorIs(t, err, revision.ErrTrailingData)
}

func TestSchema_Encode_SinkFailure(t *testing.T) {
	t.Parallel()

	value := defaultWidget()

	for _, budget := range []int{0, 2, 12} {
		err := widgets.Encode(codec.NewBinaryWriter(&failingWriter{budget: budget}), &value)
		require.ErrorIs(t, err, revision.ErrEncode)
		require.ErrorIs(t, err, errSinkClosed)
	}
}

func TestSchema_Encode_UnknownVariant(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	value := Widget{Name: "x", Color: Color(42), SizeBytes: 0, Enabled: false, Count: 0}

	err := widgets.Encode(codec.NewBinaryWriter(&buf), &value)
	require.ErrorIs(t, err, revision.ErrEncode)
	require.ErrorIs(t, err, revision.ErrUnknownVariant)

	var encode revision.EncodeError
	require.ErrorAs(t, err, &encode)
	assert.Equal(t, "Color", encode.Type)
}

func TestSchema_LiveFields(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"name", "color", "size_kb", "legacy_flag", "count"}, widgets.LiveFields(1))
	assert.Equal(t, []string{"name", "color", "size", "legacy_flag", "count"}, widgets.LiveFields(2))
	assert.Equal(t, []string{"name", "color", "size", "enabled", "count"}, widgets.LiveFields(3))
	assert.Empty(t, widgets.LiveFields(0))

	fields := widgets.Fields()
	require.Len(t, fields, 7)
	assert.Equal(t, "size_kb", fields[2].Name)
	assert.True(t, fields[2].Retired)
	assert.False(t, fields[3].Retired)
	assert.Equal(t, "Widget", widgets.Name())
	assert.Equal(t, uint16(3), widgets.Revision())
	assert.Equal(t, defaultWidget(), widgets.Default())
}

func TestNewSchema_Invalid(t *testing.T) {
	t.Parallel()

	name := func(d revision.Descriptor) revision.Field[Widget] {
		return revision.NewField("name", d, revision.String(), func(w *Widget) *string { return &w.Name })
	}
	retired := func(d revision.Descriptor, fn revision.ConvertFunc[Widget, uint64]) revision.Field[Widget] {
		return revision.NewRetiredField("old", d, revision.Uint64(), fn)
	}

	tests := []struct {
		name     string
		typ      string
		revision uint16
		defaults func() Widget
		fields   []revision.Field[Widget]
	}{
		{"empty name", "", 1, defaultWidget, nil},
		{"zero revision", "Widget", 0, defaultWidget, nil},
		{"no defaults", "Widget", 1, nil, nil},
		{"zero start", "Widget", 1, defaultWidget, []revision.Field[Widget]{name(revision.Since(0))}},
		{"start after current", "Widget", 1, defaultWidget, []revision.Field[Widget]{name(revision.Since(2))}},
		{"start equals end", "Widget", 3, defaultWidget, []revision.Field[Widget]{
			retired(revision.Between(2, 2), revision.Ignore[Widget, uint64]),
		}},
		{"end after current", "Widget", 2, defaultWidget, []revision.Field[Widget]{
			retired(revision.Between(1, 3), revision.Ignore[Widget, uint64]),
		}},
		{"retired without conversion", "Widget", 2, defaultWidget, []revision.Field[Widget]{
			retired(revision.Between(1, 2), nil),
		}},
		{"conversion without end", "Widget", 2, defaultWidget, []revision.Field[Widget]{
			retired(revision.Always(), revision.Ignore[Widget, uint64]),
		}},
		{"live field with end", "Widget", 2, defaultWidget, []revision.Field[Widget]{
			name(revision.Between(1, 2)),
		}},
		{"live field without reference", "Widget", 1, defaultWidget, []revision.Field[Widget]{
			revision.NewField[Widget, string]("name", revision.Always(), revision.String(), nil),
		}},
		{"duplicate field", "Widget", 1, defaultWidget, []revision.Field[Widget]{
			name(revision.Always()), name(revision.Always()),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := revision.NewSchema(tt.typ, tt.revision, tt.defaults, tt.fields...)
			require.ErrorIs(t, err, revision.ErrSchema)

			var schemaErr revision.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.NotEmpty(t, schemaErr.Reason)
		})
	}

	assert.Panics(t, func() {
		revision.MustSchema[Widget]("Widget", 0, defaultWidget)
	})
}

func TestNewEnum_Invalid(t *testing.T) {
	t.Parallel()

	variant := func(name string, tag uint8, value Color, d revision.Descriptor) revision.EnumVariant[Color] {
		return revision.EnumVariant[Color]{Name: name, Tag: tag, Value: value, Descriptor: d, Convert: nil}
	}

	tests := []struct {
		name     string
		variants []revision.EnumVariant[Color]
	}{
		{"no variants", nil},
		{"duplicate tag", []revision.EnumVariant[Color]{
			variant("red", 0, Red, revision.Always()),
			variant("green", 0, Green, revision.Always()),
		}},
		{"duplicate name", []revision.EnumVariant[Color]{
			variant("red", 0, Red, revision.Always()),
			variant("red", 1, Green, revision.Always()),
		}},
		{"duplicate value", []revision.EnumVariant[Color]{
			variant("red", 0, Red, revision.Always()),
			variant("crimson", 1, Red, revision.Always()),
		}},
		{"retired without conversion", []revision.EnumVariant[Color]{
			variant("red", 0, Red, revision.Always()),
			variant("blue", 1, Blue, revision.Between(1, 2)),
		}},
		{"variant after current", []revision.EnumVariant[Color]{
			variant("red", 0, Red, revision.Since(3)),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := revision.NewEnum("Color", 2, tt.variants...)
			require.ErrorIs(t, err, revision.ErrSchema)
		})
	}
}

func TestEnum_Tags(t *testing.T) {
	t.Parallel()

	for _, tag := range []uint64{0, 1, 3} {
		value, ok := colors.FromTag(tag)
		require.True(t, ok)

		back, ok := colors.Tag(value)
		require.True(t, ok)
		assert.Equal(t, tag, uint64(back))
	}

	for _, tag := range []uint64{2, 4, 255, 256, 1 << 40} {
		_, ok := colors.FromTag(tag)
		assert.False(t, ok, "tag %d", tag)
	}

	value, ok := colors.FromName("yellow")
	require.True(t, ok)
	assert.Equal(t, Yellow, value)

	_, ok = colors.FromName("blue")
	assert.False(t, ok)

	name, ok := colors.VariantName(Green)
	require.True(t, ok)
	assert.Equal(t, "green", name)

	assert.Len(t, colors.Variants(), 4)
}

func TestEnum_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, color := range []Color{Red, Green, Yellow} {
		var buf bytes.Buffer

		require.NoError(t, colors.Encode(codec.NewBinaryWriter(&buf), color))
		assert.Equal(t, 3, buf.Len())

		decoded, err := colors.Decode(codec.NewBinaryReader(&buf))
		require.NoError(t, err)
		assert.Equal(t, color, decoded)
	}
}

func TestEnum_Decode_RetiredVariant(t *testing.T) {
	t.Parallel()

	decoded, err := colors.Decode(codec.NewBinaryReader(bytes.NewReader([]byte{0x01, 0x00, 0x02})))
	require.NoError(t, err)
	assert.Equal(t, Green, decoded)

	_, err = colors.DecodeRevision(codec.NewBinaryReader(bytes.NewReader([]byte{0x02, 0x00, 0x03})), 1)
	require.ErrorIs(t, err, revision.ErrFutureRevision)

	_, err = colors.Decode(codec.NewBinaryReader(bytes.NewReader([]byte{0x01, 0x00})))
	require.ErrorIs(t, err, revision.ErrFormat)
}
