package session

import "fmt"

// NoEntitiesLabel is shown when a completed listing carried no Pokémon.
const NoEntitiesLabel = "No Pokémon found in storage."

// Entity summarizes one Pokémon held in device storage.
type Entity struct {
	Index     int    // storage slot; not necessarily contiguous
	Name      string // nickname, or SPECIES_ID_<n> when the device has none
	SpeciesID string

	// Placeholder marks the synthesized "no entities" row. It cannot be
	// highlighted or traded.
	Placeholder bool
}

func placeholderEntity() Entity {
	return Entity{Index: -1, Name: NoEntitiesLabel, Placeholder: true}
}

// Label renders the entity for list views.
func (e Entity) Label() string {
	if e.Placeholder {
		return e.Name
	}
	return fmt.Sprintf("%s (Species ID: %s, Index: %d)", e.Name, e.SpeciesID, e.Index)
}
