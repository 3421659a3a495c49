// Package revision encodes and decodes records whose shape changes across
// releases without breaking previously written bytes.
//
// Every field of a record carries a [Descriptor]: the half-open range of
// revisions in which the field is written. A [Schema] lists the fields of a
// struct in wire order together with the type's current revision and its
// default value; an [Enum] does the same for a closed set of tagged variants.
//
// Wire format, per record:
//
//	[revision u16][field_1][field_2]...[field_k]
//
// where the fields are exactly those live at the header revision, in
// declared order. Encoding always writes the current revision. Decoding reads
// any revision up to the known one: retired fields are read into a scratch
// value and handed to their conversion function, fields that did not exist
// yet keep their defaults, and a header newer than the known revision fails
// with [FutureRevisionError] before anything else is read.
//
// The primitive values themselves are written by a [codec.Writer] and read by
// a [codec.Reader].
package revision
