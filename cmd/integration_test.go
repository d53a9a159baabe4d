package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/churnlens-cli/internal/session"
)

// resetFlags clears flag values left over from a previous invocation.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns what it rendered.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// isolate points HOME at a temp dir so config and session stay private.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeScores(t *testing.T, dir string, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("name,age,city,Churn_Probability,Churn_Prediction\n")
	cities := []string{"Paris", "Lyon", "Nice"}
	for i := 0; i < rows; i++ {
		prob := float64((i * 37) % 100)
		label := "Low Risk"
		if prob >= 50 {
			label = "High Risk"
		}
		fmt.Fprintf(&b, "c%02d,%d,%s,%g,%s\n", i, 20+i*3, cities[i%len(cities)], prob, label)
	}
	path := filepath.Join(dir, "scores.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write scores: %v", err)
	}
	return path
}

func TestCLI_Load_Views_Export_Reset(t *testing.T) {
	home := isolate(t)
	path := writeScores(t, home, 12)

	runCmd(t, "load", path)

	out := runCmd(t, "summary", "--format", "json")
	var sum struct {
		Total int `json:"total_customers"`
		High  int `json:"high_risk_customers"`
		Low   int `json:"low_risk_customers"`
	}
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatalf("summary json: %v\n%s", err, out)
	}
	if sum.Total != 12 || sum.High+sum.Low != 12 {
		t.Fatalf("summary = %+v", sum)
	}

	out = runCmd(t, "columns")
	if !strings.Contains(out, "| age | Age | numeric |") || !strings.Contains(out, "| city | City | categorical |") {
		t.Fatalf("columns output:\n%s", out)
	}

	out = runCmd(t, "view", "categories", "City", "--top", "1", "--format", "json")
	var cats []struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &cats); err != nil {
		t.Fatalf("categories json: %v\n%s", err, out)
	}
	if len(cats) != 1 || cats[0].Name != "Paris" || cats[0].Count != 4 {
		t.Fatalf("categories = %+v", cats)
	}

	out = runCmd(t, "view", "histogram", "unknown")
	if !strings.Contains(out, "(no data)") {
		t.Fatalf("unknown column should render an empty view:\n%s", out)
	}

	for _, args := range [][]string{
		{"view", "risk"},
		{"view", "pyramid"},
		{"view", "age-groups"},
		{"view", "avg-churn", "age", "--bins", "4"},
		{"view", "scatter", "age", "age"},
		{"view", "churn-by-category", "city"},
		{"view", "dashboard", "--format", "yaml"},
		{"view", "customer", "0"},
		{"profile"},
	} {
		if out := runCmd(t, args...); strings.TrimSpace(out) == "" {
			t.Fatalf("%v rendered nothing", args)
		}
	}
	if _, err := execute(t, "view", "customer", "12"); err == nil {
		t.Fatalf("expected out-of-range customer to fail")
	}
	for _, args := range [][]string{
		{"view", "histogram", "age", "--bins", "101"},
		{"view", "avg-churn", "age", "--bins", "101"},
		{"view", "categories", "city", "--top", "1001"},
		{"view", "churn-by-category", "city", "--top", "1001"},
	} {
		if _, err := execute(t, args...); err == nil || !strings.Contains(err.Error(), "must be at most") {
			t.Fatalf("%v err = %v, want limit error", args, err)
		}
	}

	csvPath := filepath.Join(home, "out.csv")
	runCmd(t, "export", "-o", csvPath)
	b, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(string(b), "\n")
	if len(lines) != 13 || lines[0] != "name,age,city,Churn_Probability,Churn_Prediction" || lines[1] != "c00,20,Paris,0,Low Risk" {
		t.Fatalf("export:\n%s", b)
	}
	xlsxPath := filepath.Join(home, "out.xlsx")
	runCmd(t, "export", "-o", xlsxPath)
	if fi, err := os.Stat(xlsxPath); err != nil || fi.Size() == 0 {
		t.Fatalf("xlsx export missing: %v", err)
	}
	if _, err := execute(t, "export", "-o", filepath.Join(home, "out.pdf")); err == nil {
		t.Fatalf("expected unsupported export format to fail")
	}

	// The exported CSV loads back as the same table.
	runCmd(t, "load", csvPath)
	out = runCmd(t, "summary", "--format", "json")
	var again struct {
		Total int `json:"total_customers"`
		High  int `json:"high_risk_customers"`
	}
	if err := json.Unmarshal([]byte(out), &again); err != nil || again.Total != 12 || again.High != sum.High {
		t.Fatalf("reloaded summary = %+v (%v)", again, err)
	}

	runCmd(t, "reset")
	if _, err := execute(t, "summary"); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("summary after reset err = %v, want ErrNoSession", err)
	}
}

func TestCLI_PageCursor(t *testing.T) {
	home := isolate(t)
	runCmd(t, "load", writeScores(t, home, 25))

	page := func(args ...string) (number, rows int) {
		t.Helper()
		out := runCmd(t, append([]string{"page", "--format", "json"}, args...)...)
		var tbl struct {
			Page struct {
				Number int              `json:"page"`
				Rows   []map[string]any `json:"rows"`
			} `json:"page"`
		}
		if err := json.Unmarshal([]byte(out), &tbl); err != nil {
			t.Fatalf("page json: %v\n%s", err, out)
		}
		return tbl.Page.Number, len(tbl.Page.Rows)
	}

	if n, rows := page(); n != 1 || rows != 10 {
		t.Fatalf("first page = %d (%d rows)", n, rows)
	}
	if n, rows := page("--next"); n != 2 || rows != 10 {
		t.Fatalf("next = %d (%d rows)", n, rows)
	}
	if n, rows := page("--next"); n != 3 || rows != 5 {
		t.Fatalf("last = %d (%d rows)", n, rows)
	}
	if n, _ := page("--next"); n != 3 {
		t.Fatalf("next past the end = %d", n)
	}
	if n, rows := page("--size", "25"); n != 1 || rows != 25 {
		t.Fatalf("size change = %d (%d rows)", n, rows)
	}
	if n, rows := page("-n", "5"); n != 5 || rows != 0 {
		t.Fatalf("out of range page = %d (%d rows)", n, rows)
	}
	if _, err := execute(t, "page", "--size", "7"); err == nil {
		t.Fatalf("expected invalid page size to fail")
	}

	out := runCmd(t, "page", "-n", "1")
	if !strings.Contains(out, "Showing 1 to 25 of 25 customers") {
		t.Fatalf("markdown page:\n%s", out)
	}
}

func TestCLI_ConfigSet(t *testing.T) {
	home := isolate(t)
	if _, err := execute(t, "config", "set", "page_size", "7"); err == nil {
		t.Fatalf("expected page_size 7 to be rejected")
	}
	runCmd(t, "config", "set", "page_size", "25")
	runCmd(t, "config", "set", "cors_origins", "http://a.test, http://b.test")
	if _, err := execute(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
	b, err := os.ReadFile(filepath.Join(home, ".churnlens", "config.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(b), "page_size: 25") || !strings.Contains(string(b), "http://b.test") {
		t.Fatalf("config.yaml:\n%s", b)
	}

	runCmd(t, "load", writeScores(t, home, 30))
	out := runCmd(t, "page")
	if !strings.Contains(out, "Showing 1 to 25 of 30 customers") {
		t.Fatalf("configured page size not applied:\n%s", out)
	}
}

func TestCLI_ProfileFile(t *testing.T) {
	home := isolate(t)
	path := writeScores(t, home, 9)
	outPath := filepath.Join(home, "profile.md")
	runCmd(t, "profile", path, "-o", outPath)
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read profile: %v", err)
	}
	if !strings.Contains(string(b), "[DATASET SUMMARY]") || !strings.Contains(string(b), "scores.csv") {
		t.Fatalf("profile:\n%s", b)
	}
	if _, err := execute(t, "profile"); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("profile without session err = %v", err)
	}
}
