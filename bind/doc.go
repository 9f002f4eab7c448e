// Package bind is the typed binding engine over Document Values.
//
// A View is a read-only projection of one object node as one record type of
// a catalogue. It never copies or mutates the node; accessors return
// primitive copies or fresh child Views. A Builder owns a private object
// node, enforces the required fields of its record type at construction and
// produces Views over fresh clones. Validate walks a View recursively and
// reports structural problems as schemabind.Issues.
//
// Accessors come in two flavours. Required accessors return an error for
// absent (or null) values and for values of the wrong JSON kind. Optional
// accessors return (value, ok) and report ok == false both when the field is
// absent and when it holds a value of the wrong kind; Validate with
// ValidateOpt{Strict: true} surfaces the latter.
//
// Views over a shared document are safe for concurrent readers as long as
// nothing mutates the document. A Builder is single-owner.
package bind
