package services

import (
	"fmt"
	"net/http"
)

// Variant identifies one of the export documents the remote service can generate.
type Variant string

const (
	VariantRABPDF        Variant = "rab-pdf"
	VariantRABExcel      Variant = "rab-excel"
	VariantVolumePDF     Variant = "volume-pdf"
	VariantJobItemPDF    Variant = "job-item-pdf"
	VariantKategoriPDF   Variant = "kategori-pdf"
	VariantAHSPPDF       Variant = "ahsp-pdf"
	VariantMasterItemPDF Variant = "master-item-pdf"
)

// Base selects which remote API root a variant is served from.
type Base int

const (
	EstimationBase Base = iota
	ExportBase
)

// VariantSpec describes how a variant is requested and named.
type VariantSpec struct {
	Label        string
	Base         Base
	Method       string
	Path         string // appended to {base}/{id}
	SupportsLogo bool
	Prefix       string
	Ext          string
}

var variantSpecs = map[Variant]VariantSpec{
	VariantRABPDF:        {"RAB (PDF)", EstimationBase, http.MethodPost, "/download/pdf", true, "RAB", "pdf"},
	VariantRABExcel:      {"RAB (Excel)", EstimationBase, http.MethodPost, "/download/excel", false, "RAB", "xlsx"},
	VariantVolumePDF:     {"Volume", ExportBase, http.MethodGet, "/download/pdf/volume", false, "Volume", "pdf"},
	VariantJobItemPDF:    {"Job Item", ExportBase, http.MethodGet, "/download/pdf/job-item", false, "JobItem", "pdf"},
	VariantKategoriPDF:   {"Kategori", ExportBase, http.MethodGet, "/download/pdf/kategori", false, "Kategori", "pdf"},
	VariantAHSPPDF:       {"AHSP", ExportBase, http.MethodGet, "/download/pdf/ahsp", false, "AHSP", "pdf"},
	VariantMasterItemPDF: {"Master Item", ExportBase, http.MethodGet, "/download/pdf/master-item", false, "MasterItem", "pdf"},
}

// Variants lists every variant in menu order.
var Variants = []Variant{
	VariantRABPDF,
	VariantRABExcel,
	VariantVolumePDF,
	VariantJobItemPDF,
	VariantKategoriPDF,
	VariantAHSPPDF,
	VariantMasterItemPDF,
}

func (v Variant) Spec() (VariantSpec, bool) {
	spec, ok := variantSpecs[v]
	return spec, ok
}

func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	if _, ok := variantSpecs[v]; !ok {
		return "", fmt.Errorf("unknown export variant %q", s)
	}
	return v, nil
}
