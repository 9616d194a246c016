package i18n

import (
	"sort"
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "min", "max" or "allowed").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator. Templates use
// {name} placeholders filled from data.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"unknown_field":      "unknown search parameter",
		"empty_value":        "value must not be empty",
		"not_an_integer":     "value must be a whole number",
		"out_of_range":       "value must be between {min} and {max}",
		"not_a_boolean":      "value must be {true} or {false}",
		"not_in_enumeration": "value must be one of {allowed}",
		"not_in_code_list":   "value is not a code in {source}",
		"inverted_range":     "{min_field} must not exceed {max_field}",
		"source_unavailable": "code list {source} is unavailable",
		"field_missing":      "code list {source} has no field {field}",
	},
	"es": {
		"unknown_field":      "parámetro de búsqueda desconocido",
		"empty_value":        "el valor no puede estar vacío",
		"not_an_integer":     "el valor debe ser un número entero",
		"out_of_range":       "el valor debe estar entre {min} y {max}",
		"not_a_boolean":      "el valor debe ser {true} o {false}",
		"not_in_enumeration": "el valor debe ser uno de {allowed}",
		"not_in_code_list":   "el valor no es un código de {source}",
		"inverted_range":     "{min_field} no puede ser mayor que {max_field}",
		"source_unavailable": "la lista de códigos {source} no está disponible",
		"field_missing":      "la lista de códigos {source} no tiene el campo {field}",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", data[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"es").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
