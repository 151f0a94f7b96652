package report

// Canonical header rows for the TSV outputs.
const (
	RankedTSVHeader = "rank\tname\tcount\tpercent"
	TreeTSVHeader   = "name\tparent\tvalue"
)

var rankedColumns = []string{"#", "Name", "Count", "Percent"}
