// Package server exposes the validation pipeline over HTTP.
//
// Routes:
//
//	POST /v1/validate     validate an uploaded TSV (raw body or multipart field "file")
//	GET  /v1/vocabulary   required columns and allowed values
//	GET  /health/live     liveness probe
//	GET  /health/ready    readiness probe
//	GET  /version         build information
//	GET  /metrics         Prometheus metrics (path configurable)
//
// POST /v1/validate answers JSON by default:
//
//	{
//	    "run_id": "0b6f...",
//	    "rows": 120,
//	    "summary": {"rows": 120, "failed_rows": 3, "columns": [...]},
//	    "failures": {"usi_validation_details": [4, 17]}
//	}
//
// With ?format=tsv the annotated table is returned as the attachment
// validated_usis_smiles_metadata.tsv. A table missing required columns
// is answered with 422 and the list of missing columns.
package server
