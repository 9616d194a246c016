// Package usajobs ships the USAJobs search-parameter schema and a snapshot of
// the public code lists it references.
package usajobs

import (
	"embed"
	"io/fs"
	"sync"

	"github.com/herpritts/jobquery"
	"github.com/herpritts/jobquery/schema"
)

// BaseURL is the public code-list API root.
const BaseURL = "https://data.usajobs.gov/api"

// SchemaFile is the embedded schema's name inside Data.
const SchemaFile = "data/search_params.json"

//go:embed data/search_params.json data/codes/*.json
var Data embed.FS

// Endpoints maps each code-list file referenced by the schema to its path
// below BaseURL.
var Endpoints = map[string]string{
	"codes_occupational_series.json":     "/codelist/occupationalseries",
	"codes_agency_subelements.json":      "/codelist/agencysubelements",
	"codes_position_offering_types.json": "/codelist/positionofferingtypes",
	"codes_position_schedule_types.json": "/codelist/positionscheduletypes",
	"codes_travel_percentages.json":      "/codelist/travelpercentages",
	"codes_security_clearances.json":     "/codelist/securityclearances",
	"codes_hiring_paths.json":            "/codelist/hiringpaths",
}

var (
	regOnce sync.Once
	reg     *jobquery.Registry
	regErr  error
)

// Registry returns the registry built from the embedded schema.
func Registry() (*jobquery.Registry, error) {
	regOnce.Do(func() {
		reg, _, regErr = schema.LoadFS(Data, SchemaFile, schema.Options{Strict: true})
	})
	return reg, regErr
}

// CodeLists returns the embedded code-list snapshot, rooted so that the
// schema's PossibleValuesSource names resolve directly.
func CodeLists() fs.FS {
	sub, err := fs.Sub(Data, "data/codes")
	if err != nil {
		panic(err)
	}
	return sub
}
