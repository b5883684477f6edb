package services

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	unsafeFilenameRun = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	dispositionName   = regexp.MustCompile(`(?i)filename\*?=(?:[\w.-]+'[\w-]*')?["']?([^;"']+)["']?`)
)

// Sanitize collapses every run of characters outside [A-Za-z0-9_-] into a
// single underscore.
func Sanitize(name string) string {
	return unsafeFilenameRun.ReplaceAllString(name, "_")
}

// ResolveFilename returns the file name proposed by a Content-Disposition
// header, or fallback when the header is absent or unusable. A name taken
// from the header is used as sent.
func ResolveFilename(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	m := dispositionName.FindStringSubmatch(disposition)
	if m == nil {
		return fallback
	}
	name, err := url.PathUnescape(strings.TrimSpace(m[1]))
	if err != nil || name == "" {
		return fallback
	}
	return name
}

// FallbackFilename builds {Prefix}_{project}.{ext} for a variant.
func FallbackFilename(v Variant, projectName string) string {
	spec, ok := v.Spec()
	if !ok {
		spec = VariantSpec{Prefix: "Export", Ext: "bin"}
	}
	if strings.TrimSpace(projectName) == "" {
		projectName = "estimation"
	}
	return spec.Prefix + "_" + Sanitize(projectName) + "." + spec.Ext
}
