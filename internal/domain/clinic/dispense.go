package clinic

import (
	"fmt"
	"sort"
)

const (
	DefaultFrequency    = "Once daily"
	DefaultInstructions = "After meal"
)

// CatalogItem is a dispensable medication at a fixed dosage.
type CatalogItem struct {
	Selection  int    `json:"selection"`
	Medication string `json:"medication"`
	Dosage     string `json:"dosage"`
}

// Catalog maps a menu selection number to a medication.
type Catalog map[int]CatalogItem

// DefaultCatalog is the clinic's five-item pharmacy menu.
func DefaultCatalog() Catalog {
	items := []CatalogItem{
		{Selection: 1, Medication: "Aspirin", Dosage: "325 mg"},
		{Selection: 2, Medication: "Ibuprofen", Dosage: "200 mg"},
		{Selection: 3, Medication: "Paracetamol", Dosage: "500 mg"},
		{Selection: 4, Medication: "Antibiotics", Dosage: "500 mg"},
		{Selection: 5, Medication: "Antihistamines", Dosage: "10 mg"},
	}
	c := make(Catalog, len(items))
	for _, it := range items {
		c[it.Selection] = it
	}
	return c
}

// Items lists the catalog ordered by selection number.
func (c Catalog) Items() []CatalogItem {
	out := make([]CatalogItem, 0, len(c))
	for _, it := range c {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Selection < out[j].Selection })
	return out
}

// Lookup returns the item behind selection.
func (c Catalog) Lookup(selection int) (CatalogItem, error) {
	it, ok := c[selection]
	if !ok {
		return CatalogItem{}, fmt.Errorf("%w: no medication for selection %d", ErrInvalidSelection, selection)
	}
	return it, nil
}

// PrescriptionDispenser issues catalog medications and checks the patient out
// of the triage queue.
type PrescriptionDispenser struct {
	store   *EntityStore
	triage  *TriageQueue
	catalog Catalog
}

func NewPrescriptionDispenser(store *EntityStore, triage *TriageQueue, catalog Catalog) *PrescriptionDispenser {
	return &PrescriptionDispenser{store: store, triage: triage, catalog: catalog}
}

func (d *PrescriptionDispenser) Catalog() Catalog { return d.catalog }

// Dispense attaches the selected medication to the patient and removes them
// from triage. When the patient is not queued the prescription stays attached
// and is returned together with an ErrNotInQueue error.
func (d *PrescriptionDispenser) Dispense(patientID string, selection int) (Prescription, error) {
	patient, err := d.store.FindPatient(patientID)
	if err != nil {
		return Prescription{}, err
	}
	item, err := d.catalog.Lookup(selection)
	if err != nil {
		return Prescription{}, err
	}

	rx := Prescription{
		Medication:   item.Medication,
		Dosage:       item.Dosage,
		Frequency:    DefaultFrequency,
		Instructions: DefaultInstructions,
	}
	patient.AddPrescription(rx)

	if err := d.triage.DequeueOnCheckout(patient); err != nil {
		return rx, err
	}
	return rx, nil
}
