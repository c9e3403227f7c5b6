package avlkv

import "log"

// Options configures Open, following the oasis-core mkvs/db/badger
// api.Config pattern: a plain struct of backing-store path, in-memory
// toggle, prune depth, and logger, passed once at construction time.
type Options struct {
	// Dir is the on-disk directory for the backing store. Open sets it
	// from its own path argument, overwriting any value given here.
	// Ignored if InMemory is set.
	Dir string

	// InMemory runs the store against db.MemDB instead of Badger, for
	// tests and tooling.
	InMemory bool

	// KeepDepth is the number of top tree levels Commit keeps resident
	// in memory; everything below is pruned back to a Reference link
	// after each commit. The root itself always stays resident, so zero
	// (the default) and one both keep only the root — a conservative
	// setting suited to long-running processes with large trees.
	KeepDepth int

	// Logger receives the Badger backend's internal log output; the
	// in-memory backend does not log. Defaults to the standard library's
	// default logger if nil.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}
