package schema

import "strings"

// IDs of seeded statuses that code refers to directly.
const (
	StatusAccepted = 1
	StatusSynonym  = 2
)

// IDs of seeded ranks that code refers to directly.
const (
	RankKingdom = 1
	RankPhylum  = 3
	RankClass   = 5
	RankOrder   = 7
	RankFamily  = 9
	RankGenus   = 12
	RankSpecies = 15
)

// Names of seeded statuses.
const (
	StatusAcceptedName = "ACCEPTED"
	StatusSynonymName  = "SYNONYM"
)

// Reconciliation passes stored in checkpoints.
const (
	PassChildren = "children"
	PassSynonyms = "synonyms"
)

// Ranks returns the default rank vocabulary in hierarchical order.
func Ranks() []TaxonRank {
	names := []string{
		"Kingdom", "Subkingdom", "Phylum", "Subphylum", "Class", "Subclass",
		"Order", "Suborder", "Family", "Subfamily", "Tribe", "Genus",
		"Subgenus", "Section", "Species", "Subspecies", "Variety", "Form",
	}
	res := make([]TaxonRank, len(names))
	for i, v := range names {
		res[i] = TaxonRank{ID: i + 1, Name: v, EnName: strings.ToLower(v)}
	}
	return res
}

// Statuses returns the default status vocabulary.
func Statuses() []TaxonStatus {
	return []TaxonStatus{
		{ID: StatusAccepted, Name: StatusAcceptedName, LocalName: "accepted"},
		{ID: StatusSynonym, Name: StatusSynonymName, LocalName: "synonym",
			IsSynonym: true},
		{ID: 3, Name: "HETEROTYPIC_SYNONYM", LocalName: "heterotypic synonym",
			IsSynonym: true},
		{ID: 4, Name: "HOMOTYPIC_SYNONYM", LocalName: "homotypic synonym",
			IsSynonym: true},
		{ID: 5, Name: "PROPARTE_SYNONYM", LocalName: "pro parte synonym",
			IsSynonym: true},
		{ID: 6, Name: "MISAPPLIED", LocalName: "misapplied", IsSynonym: true},
		{ID: 7, Name: "DOUBTFUL", LocalName: "doubtful"},
	}
}

// Sources returns the default external databases.
func Sources() []DBSource {
	return []DBSource{
		{ID: 1, Name: "iNat", Title: "iNaturalist",
			LinkTemplate: "https://www.inaturalist.org/taxa/"},
		{ID: 2, Name: "IF", Title: "Index Fungorum",
			LinkTemplate: "https://www.indexfungorum.org/names/NamesRecord.asp?RecordID=",
			Trusted:      true},
		{ID: 3, Name: "MB", Title: "MycoBank",
			LinkTemplate: "https://www.mycobank.org/page/Name%20details%20page/",
			Trusted:      true},
		{ID: 4, Name: "CNALH", Title: "Consortium of Lichen Herbaria",
			LinkTemplate: "https://lichenportal.org/cnalh/taxa/index.php?taxon="},
		{ID: 12, Name: "GBIF", Title: "Global Biodiversity Information Facility",
			LinkTemplate: "https://www.gbif.org/species/", Trusted: true},
	}
}
