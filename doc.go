// Package jobquery validates job-search criteria against a declarative
// parameter schema and prepares them for the USAJobs search API.
//
// Package jobquery provides:
//
// - A Registry of field descriptors built from schema data at runtime (see schema/)
// - A Resolver that lazily loads external code lists, one load per source (see source/)
// - A Validator that checks a raw value against one descriptor
// - A Builder that validates a whole criteria set and collects every rejection as Issues
//
// Design policy:
// - Keep the engine in the root package; put loaders, sources and transports in sub-packages.
// - Construct collaborators explicitly and pass them in; there is no global registry.
// - Validation never stops at the first problem. Callers decide what is fatal.
//
// Typical usage:
//
//	reg, _, err := schema.Load("search_params.json", schema.Options{})
//	eng := jobquery.New(reg, source.Dir("data"), jobquery.Options{LoadTimeout: 5 * time.Second})
//	q := eng.Build(ctx, []jobquery.Criterion{{Field: "Keyword", Value: "engineer"}})
//	if !q.OK() {
//		report := q.Report()
//	}
//	pairs := codec.Encode(q)
package jobquery
