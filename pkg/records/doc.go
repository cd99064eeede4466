// Package records holds the tabular deposition data the validator works on.
//
// A RecordSet is an ordered list of Records that share one header. Records are
// read from tab-separated text and are never mutated once parsed; validation
// results are attached alongside them by the validation package.
//
// Empty cells are treated as absent values, which matches how spreadsheet
// exports of deposition tables represent "no data":
//
//	set, err := records.ReadTSVFile("deposition.tsv")
//	if err != nil {
//		return err
//	}
//	for _, rec := range set.Records() {
//		if usi := rec.Value("input_usi"); usi != nil {
//			fmt.Println(*usi)
//		}
//	}
package records
