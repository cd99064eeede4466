package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"cmmc/validator/internal/resolvertest"
	"cmmc/validator/pkg/cli"
	"cmmc/validator/pkg/config"
	"cmmc/validator/pkg/validation"
)

const (
	goodUSI = "mzspec:MSV000001:file.mzML:scan:1"

	vocabularyTable = "input_usi\tinput_structure\tinput_molecule_origin\tinput_confirmation\tinput_source\n" +
		"\t\tDiet\tLevel 1\tHuman\n" +
		"\t\tUnknown\tLevel 2\tMouse\n"

	tableHeader = "sample\tinput_usi\tinput_structure\tinput_molecule_origin\tinput_confirmation\tinput_source\n"
)

type fixture struct {
	dir         string
	identifiers *resolvertest.MockServer
	structures  *resolvertest.MockServer
}

// newFixture writes a vocabulary and a config pointing at mock services,
// and resets the command flags.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		dir:         t.TempDir(),
		identifiers: resolvertest.NewMockServer("usi1"),
		structures:  resolvertest.NewMockServer("smiles"),
	}
	t.Cleanup(f.identifiers.Close)
	t.Cleanup(f.structures.Close)

	vocabPath := f.write(t, "vocabulary.tsv", vocabularyTable)
	cfgPath := f.write(t, "config.yaml", `services:
  identifier:
    base_url: `+f.identifiers.URL()+`/json/
    max_attempts: 1
  structure:
    base_url: `+f.structures.URL()+`/convert
vocabulary:
  source: `+vocabPath+`
telemetry:
  logging:
    level: error
`)

	cfgFile = cfgPath
	verbose = false
	validateFlags.input = ""
	validateFlags.vocabulary = ""
	validateFlags.output = ""
	validateFlags.format = "text"
	validateFlags.failOnInvalid = false
	validateFlags.progress = false
	vocabularyFlags.source = ""
	vocabularyFlags.format = "text"
	t.Cleanup(func() { cfgFile = "" })

	return f
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func capture() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestValidateAllRowsPass(t *testing.T) {
	f := newFixture(t)
	validateFlags.input = f.write(t, "deposition.tsv", tableHeader+
		"s1\t"+goodUSI+"\tCCO\tDiet\tLevel 1\tHuman\n"+
		"s2\t\t\tUnknown\tLevel 2\tMouse\n")

	cmd, out := capture()
	if err := validateTable(cmd, nil); err != nil {
		t.Fatalf("validateTable() error = %v", err)
	}

	if !strings.Contains(out.String(), "2 rows, 0 failed") {
		t.Errorf("report missing summary line:\n%s", out.String())
	}

	annotated, err := os.ReadFile(filepath.Join(f.dir, validation.OutputFileName))
	if err != nil {
		t.Fatalf("annotated table not written: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(annotated), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("annotated table has %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "sample\tinput_usi") {
		t.Errorf("annotated header = %q", lines[0])
	}
	if f.identifiers.RequestCount() != 1 {
		t.Errorf("identifier lookups = %d, want 1", f.identifiers.RequestCount())
	}
}

func TestValidateFailOnInvalid(t *testing.T) {
	f := newFixture(t)
	validateFlags.input = f.write(t, "deposition.tsv", tableHeader+
		"s1\t"+goodUSI+"\tCCO\tPlant\tLevel 1\tHuman\n")
	validateFlags.output = filepath.Join(f.dir, "out.tsv")
	validateFlags.failOnInvalid = true

	cmd, out := capture()
	err := validateTable(cmd, nil)
	if !errors.Is(err, cli.ErrRowsFailed) {
		t.Fatalf("validateTable() error = %v, want ErrRowsFailed", err)
	}
	if code := cli.ExitCode(err); code != cli.ExitRowsFailed {
		t.Errorf("ExitCode() = %d, want %d", code, cli.ExitRowsFailed)
	}
	if !strings.Contains(out.String(), "row 1  Plant") {
		t.Errorf("report does not list the failing value:\n%s", out.String())
	}
	if _, err := os.Stat(validateFlags.output); err != nil {
		t.Errorf("annotated table not written to --output: %v", err)
	}
}

func TestValidateFailedRowsWithoutFlagSucceeds(t *testing.T) {
	f := newFixture(t)
	validateFlags.input = f.write(t, "deposition.tsv", tableHeader+
		"s1\t"+goodUSI+"\tCCO\tPlant\tLevel 1\tHuman\n")

	cmd, _ := capture()
	if err := validateTable(cmd, nil); err != nil {
		t.Errorf("validateTable() error = %v, want nil", err)
	}
}

func TestValidateMissingColumns(t *testing.T) {
	f := newFixture(t)
	validateFlags.input = f.write(t, "deposition.tsv",
		"input_usi\tinput_source\n"+goodUSI+"\tHuman\n")

	cmd, _ := capture()
	err := validateTable(cmd, nil)
	if err == nil {
		t.Fatal("validateTable() should fail on missing columns")
	}

	var missing *validation.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingColumnsError", err)
	}
	if code := cli.ExitCode(err); code != cli.ExitError {
		t.Errorf("ExitCode() = %d, want %d", code, cli.ExitError)
	}
	if !strings.Contains(cli.Hint(err), "spelling") {
		t.Errorf("Hint() = %q, want a spelling hint", cli.Hint(err))
	}
	if n := f.identifiers.RequestCount() + f.structures.RequestCount(); n != 0 {
		t.Errorf("lookups made before schema check: %d", n)
	}
}

func TestValidateJSONReport(t *testing.T) {
	f := newFixture(t)
	validateFlags.input = f.write(t, "deposition.tsv", tableHeader+
		"s1\t"+goodUSI+"\tCCO\tDiet\tLevel 1\tCat\n")
	validateFlags.format = "json"

	cmd, out := capture()
	if err := validateTable(cmd, nil); err != nil {
		t.Fatalf("validateTable() error = %v", err)
	}

	var report struct {
		RunID    string `json:"run_id"`
		Summary  validation.Summary
		Failures map[string][]struct {
			Row   int    `json:"row"`
			Value string `json:"value"`
		} `json:"failures"`
	}
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, out.String())
	}
	if report.RunID == "" {
		t.Error("report has no run_id")
	}
	if report.Summary.Rows != 1 || report.Summary.FailedRows != 1 {
		t.Errorf("summary = %+v, want 1 row, 1 failed", report.Summary)
	}

	found := false
	for _, failures := range report.Failures {
		for _, failure := range failures {
			if failure.Value == "Cat" && failure.Row == 0 {
				found = true
			}
		}
	}
	if !found {
		t.Errorf("failures do not list the source value: %+v", report.Failures)
	}
}

func TestValidateFlagErrors(t *testing.T) {
	newFixture(t)

	cmd, _ := capture()
	err := validateTable(cmd, nil)
	var cfgErr *cli.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("missing --input: error = %v, want ConfigError", err)
	}

	validateFlags.input = "deposition.tsv"
	validateFlags.format = "yaml"
	err = validateTable(cmd, nil)
	if !errors.As(err, &cfgErr) {
		t.Errorf("bad --format: error = %v, want ConfigError", err)
	}
}

func TestValidateUnreadableInput(t *testing.T) {
	f := newFixture(t)
	validateFlags.input = filepath.Join(f.dir, "missing.tsv")

	cmd, _ := capture()
	err := validateTable(cmd, nil)
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) {
		t.Errorf("error = %v, want CommandError", err)
	}
}

func TestValidateVocabularyOverride(t *testing.T) {
	f := newFixture(t)
	other := f.write(t, "other.tsv", "input_molecule_origin\tinput_confirmation\tinput_source\n"+
		"Plant\tLevel 1\tHuman\n")
	validateFlags.vocabulary = other
	validateFlags.input = f.write(t, "deposition.tsv", tableHeader+
		"s1\t"+goodUSI+"\tCCO\tPlant\tLevel 1\tHuman\n")
	validateFlags.failOnInvalid = true

	cmd, _ := capture()
	if err := validateTable(cmd, nil); err != nil {
		t.Errorf("validateTable() error = %v, want nil with the override vocabulary", err)
	}
}

func TestShowVocabulary(t *testing.T) {
	newFixture(t)

	cmd, out := capture()
	if err := showVocabulary(cmd, nil); err != nil {
		t.Fatalf("showVocabulary() error = %v", err)
	}

	text := out.String()
	for _, want := range []string{"input_usi", "input_molecule_origin", "DIET; UNKNOWN", "HUMAN; MOUSE"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestShowVocabularyJSON(t *testing.T) {
	newFixture(t)
	vocabularyFlags.format = "json"

	cmd, out := capture()
	if err := showVocabulary(cmd, nil); err != nil {
		t.Fatalf("showVocabulary() error = %v", err)
	}

	var report vocabularyReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(report.Fields["input_source"]) != 2 {
		t.Errorf("input_source values = %v, want 2", report.Fields["input_source"])
	}
}

func TestNewServerServesHealthAndMetrics(t *testing.T) {
	newFixture(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if config.GetConfig() != cfg {
		t.Error("loadConfig() should install the process-wide configuration")
	}
	logger, err := newLogger(cfg)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, stop, err := newServer(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("newServer() error = %v", err)
	}
	defer stop()

	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `cmmc_validator_vocabulary_reloads_total{outcome="success"} 1`) {
		t.Errorf("metrics do not record the startup load:\n%s", rec.Body.String())
	}
}

func TestNewServerWithoutVocabularyIsNotReady(t *testing.T) {
	f := newFixture(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	cfg.Vocabulary.Source = filepath.Join(f.dir, "absent.tsv")
	logger, err := newLogger(cfg)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, stop, err := newServer(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("newServer() error = %v", err)
	}
	defer stop()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", rec.Code)
	}
}
