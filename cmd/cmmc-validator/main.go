// cmmc-validator checks deposition tables for the Collaborative Microbial
// Metabolite Center before they are submitted.
//
// Every row of the input table is checked column by column: spectrum
// identifiers against the USI resolver, structures against the SMILES
// conversion service, and the controlled metadata fields against a
// reference vocabulary. The annotated table is written next to a summary of
// the failures.
//
// Usage:
//
//	# Validate a table with the default vocabulary (vocabulary.tsv)
//	cmmc-validator validate --input deposition.tsv
//
//	# Use a remote vocabulary and fail the build when a row is invalid
//	cmmc-validator validate --input deposition.tsv \
//	    --vocabulary https://example.org/vocabulary.tsv --fail-on-invalid
//
//	# Serve the HTTP API
//	cmmc-validator serve --config /etc/cmmc/validator.yaml
//
//	# Show the columns a table must carry
//	cmmc-validator vocabulary
package main

func main() {
	Execute()
}
