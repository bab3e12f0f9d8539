package merge

// DefaultJoinWords are abbreviations, articles and conjunctions that do not
// end or start an entry in the Bern address books. A line ending with one of
// them continues on the next line; a line starting with one continues the
// previous line, unless it names a company (Comp., Cie.).
var DefaultJoinWords = []string{
	"Aeuss.", "Dir.", "Eidg.", "Fa.", "Inn.", "Innere", "Innern", "Internat.",
	"Obere", "Schweiz.", "Schweizer.", "Untere",
	"a.", "alle", "aller", "am", "amerik.", "an", "auch", "auf", "äuß.",
	"b.", "bei", "beim", "bern.", "bis",
	"d.", "das", "del", "dem", "den", "der", "des", "die", "durch",
	"eidg", "eidg.", "eidgen.", "en gros", "engl.", "et", "etc.",
	"f.", "franz.", "französ.", "für",
	"geist.", "geistiges",
	"i.", "im", "in", "innere", "inneres", "intern.", "internat", "internat.", "ital.", "italien.",
	"kant.", "kanton.",
	"mit", "morgens",
	"nach",
	"pens",
	"schweiz.", "schweizer.", "sen.", "sind", "städt.", "statist.",
	"topogr.",
	"u.", "um", "und", "usw.",
	"vom", "vorm.", "vormals",
	"zu", "zum", "zur", "zwischen",
}

// DefaultDashMarkers start a printed "same family" line, which is always
// an entry of its own.
var DefaultDashMarkers = []string{"-", "–", "—"}

// companyMarkers keep a line starting with a join word from being glued.
var companyMarkers = []string{"Comp", "Cie"}
