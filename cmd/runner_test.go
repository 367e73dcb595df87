package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/coursecat/internal/models"
	"github.com/desertthunder/coursecat/internal/services"
	"github.com/desertthunder/coursecat/internal/shared"
	tu "github.com/desertthunder/coursecat/internal/testing"
)

func remoteCourses() []models.Course {
	return []models.Course{
		{ID: 101, Title: "Remote Airway", Instructor: "Dr. N", Category: "Anaesthesia", CourseURL: "https://youtu.be/a", Status: models.StatusUnchecked},
		{ID: 102, Title: "Remote Sutures", Instructor: "Dr. S", Category: "Surgery", CourseURL: "https://youtu.be/s", Status: models.StatusChecked},
	}
}

// newTestRunner returns a runner writing to a buffer with a quiet logger.
func newTestRunner(conn services.Connector, opts ...func(*RunnerOpts)) (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	o := RunnerOpts{
		Config:    shared.DefaultConfig(),
		Connector: conn,
		Logger:    log.New(io.Discard),
		Output:    output,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return NewRunner(o), output
}

// run executes args against the registered commands.
func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{
		Name:      "coursecat",
		Commands:  r.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	return app.Run(context.Background(), append([]string{"coursecat"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			conn := &tu.MockConnector{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Connector:  conn,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.connector != conn {
				t.Error("expected connector to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with nil connector is unconfigured", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Connector: nil})
			if runner.connector == nil || runner.connector.Configured() {
				t.Error("expected an unconfigured connector")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "courses", "connect", "load", "serve", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if cmd.Name != want[i] {
				t.Errorf("expected command %q at index %d, got %q", want[i], i, cmd.Name)
			}
		}
	})

	t.Run("controllerOpts", func(t *testing.T) {
		runner, _ := newTestRunner(&tu.MockConnector{})
		runner.config.Catalog.ConnectDelayMS = 250

		opts := runner.controllerOpts(nil)
		if opts.ConnectDelay.Milliseconds() != 250 {
			t.Errorf("expected 250ms delay, got %s", opts.ConnectDelay)
		}
		if opts.Connector != runner.connector {
			t.Error("expected runner connector")
		}
	})
}

func TestCoursesCommands(t *testing.T) {
	t.Run("list falls back to sample data", func(t *testing.T) {
		runner, output := newTestRunner(&tu.MockConnector{Unconfigured: true})

		if err := run(t, runner, "courses", "list", "--json=false"); err != nil {
			t.Fatalf("courses list failed: %v", err)
		}
		out := output.String()
		for _, want := range []string{"Courses (sample)", "Anaesthesia (1/2)", "[x]    1  Airway assessment and management part 2"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q:\n%s", want, out)
			}
		}
	})

	t.Run("list shows remote data", func(t *testing.T) {
		runner, output := newTestRunner(&tu.MockConnector{Courses: remoteCourses()})

		if err := run(t, runner, "courses", "list"); err != nil {
			t.Fatalf("courses list failed: %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "Courses (database)") || !strings.Contains(out, "Remote Sutures") {
			t.Errorf("expected remote courses:\n%s", out)
		}
	})

	t.Run("list as JSON", func(t *testing.T) {
		runner, output := newTestRunner(&tu.MockConnector{Courses: remoteCourses()})

		if err := run(t, runner, "courses", "list", "--json"); err != nil {
			t.Fatalf("courses list failed: %v", err)
		}
		out := output.String()
		for _, want := range []string{`"state": "database_active"`, `"remote_reachable": true`, `"title": "Remote Airway"`} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q:\n%s", want, out)
			}
		}
	})

	t.Run("complete on sample data stays local", func(t *testing.T) {
		conn := &tu.MockConnector{Unconfigured: true}
		runner, output := newTestRunner(conn)

		if err := run(t, runner, "courses", "complete", "2"); err != nil {
			t.Fatalf("courses complete failed: %v", err)
		}
		if !strings.Contains(output.String(), "kept locally only") {
			t.Errorf("expected local-only notice:\n%s", output.String())
		}
		if len(conn.Updates()) != 0 {
			t.Error("expected no remote writes")
		}
	})

	t.Run("complete mirrors to the remote", func(t *testing.T) {
		conn := &tu.MockConnector{Courses: remoteCourses()}
		runner, output := newTestRunner(conn)

		if err := run(t, runner, "courses", "complete", "101"); err != nil {
			t.Fatalf("courses complete failed: %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "Remote Airway marked completed") || !strings.Contains(out, "Saved to mock") {
			t.Errorf("unexpected output:\n%s", out)
		}

		updates := conn.Updates()
		if len(updates) != 1 || updates[0].ID != 101 || updates[0].Status != models.StatusChecked {
			t.Errorf("expected one checked update for 101, got %+v", updates)
		}
	})

	t.Run("complete reports a failed remote write", func(t *testing.T) {
		conn := &tu.MockConnector{Courses: remoteCourses(), UpdateErr: errors.New("permission denied")}
		runner, output := newTestRunner(conn)

		if err := run(t, runner, "courses", "complete", "101"); err != nil {
			t.Fatalf("courses complete should not fail on remote errors: %v", err)
		}
		if !strings.Contains(output.String(), "Remote write failed") {
			t.Errorf("expected failure notice:\n%s", output.String())
		}
	})

	t.Run("complete argument errors", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			want error
		}{
			{"missing id", []string{"courses", "complete"}, shared.ErrMissingArgument},
			{"malformed id", []string{"courses", "complete", "abc"}, shared.ErrInvalidArgument},
			{"unknown id", []string{"courses", "complete", "999"}, shared.ErrCourseNotFound},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				runner, _ := newTestRunner(&tu.MockConnector{Unconfigured: true})
				err := run(t, runner, tt.args...)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("export", func(t *testing.T) {
		tests := []struct {
			format string
			want   string
		}{
			{"markdown", "## Anaesthesia (1/2)"},
			{"csv", "ID,Title,Instructor,Category,Subcategory,URL,Status,Updated"},
			{"txt", "Anaesthesia"},
		}

		for _, tt := range tests {
			t.Run(tt.format, func(t *testing.T) {
				runner, output := newTestRunner(&tu.MockConnector{Unconfigured: true})
				path := filepath.Join(t.TempDir(), "out."+tt.format)

				if err := run(t, runner, "courses", "export", "--format", tt.format, "--output", path); err != nil {
					t.Fatalf("export failed: %v", err)
				}
				tu.AssertFileExists(t, path)
				if content := tu.MustReadFile(t, path); !strings.Contains(content, tt.want) {
					t.Errorf("expected %q in export:\n%s", tt.want, content)
				}
				if !strings.Contains(output.String(), "Exported 10 courses (sample)") {
					t.Errorf("unexpected output: %s", output.String())
				}
			})
		}
	})

	t.Run("export rejects unknown formats", func(t *testing.T) {
		runner, _ := newTestRunner(&tu.MockConnector{Unconfigured: true})
		if err := run(t, runner, "courses", "export", "--format", "pdf"); err == nil {
			t.Error("expected an error for pdf")
		}
	})
}

func TestConnectCommand(t *testing.T) {
	tests := []struct {
		name string
		conn *tu.MockConnector
		want string
	}{
		{"loaded", &tu.MockConnector{Courses: remoteCourses()}, "✓ Loaded 2 courses"},
		{"empty", &tu.MockConnector{}, "courses table is empty"},
		{"not configured", &tu.MockConnector{Unconfigured: true}, "Not configured"},
		{"query failed", &tu.MockConnector{FetchErr: errors.New("relation does not exist")}, "query_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, output := newTestRunner(tt.conn)
			if err := run(t, runner, "connect"); err != nil {
				t.Fatalf("connect failed: %v", err)
			}
			if !strings.Contains(output.String(), tt.want) {
				t.Errorf("expected %q in output:\n%s", tt.want, output.String())
			}
		})
	}

	t.Run("json", func(t *testing.T) {
		runner, output := newTestRunner(&tu.MockConnector{Courses: remoteCourses()})
		if err := run(t, runner, "connect", "--json"); err != nil {
			t.Fatalf("connect failed: %v", err)
		}
		for _, want := range []string{`"remote": "mock"`, `"outcome": "loaded"`, `"source": "database"`} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %q in output:\n%s", want, output.String())
			}
		}
	})
}

func writeCSV(t *testing.T, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Title,Instructor,Category,Subcategory,Duration,Level,URL,Status\n")
	for i := range rows {
		fmt.Fprintf(&b, "Course %d,Dr. %d,Surgery,,10,basic,https://youtu.be/v%d,\n", i, i, i)
	}
	b.WriteString(",missing title,Surgery,,,,https://youtu.be/x,\n")

	path := filepath.Join(t.TempDir(), "courses.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("failed to write CSV: %v", err)
	}
	return path
}

func TestLoadCommand(t *testing.T) {
	t.Run("dry run", func(t *testing.T) {
		conn := &tu.MockConnector{}
		runner, output := newTestRunner(conn)

		if err := run(t, runner, "load", "--source", writeCSV(t, 3), "--dry-run"); err != nil {
			t.Fatalf("load failed: %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "Parsed: 3 (skipped 1)") || !strings.Contains(out, "Dry run") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if len(conn.Batches()) != 0 {
			t.Error("dry run should not insert")
		}
	})

	t.Run("inserts in batches", func(t *testing.T) {
		conn := &tu.MockConnector{}
		runner, output := newTestRunner(conn, func(o *RunnerOpts) {
			o.Config.Loader.RateLimit = 1000
		})

		if err := run(t, runner, "load", "--source", writeCSV(t, 5), "--batch-size", "2"); err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if n := len(conn.Batches()); n != 3 {
			t.Errorf("expected 3 batches, got %d", n)
		}
		out := output.String()
		if !strings.Contains(out, "Inserted: 5 in 3 batches") || !strings.Contains(out, "Rows in table: 5") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("requires a configured remote", func(t *testing.T) {
		runner, _ := newTestRunner(&tu.MockConnector{Unconfigured: true})

		err := run(t, runner, "load", "--source", writeCSV(t, 1))
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("reports batch failure", func(t *testing.T) {
		conn := &tu.MockConnector{InsertErr: errors.New("duplicate key"), FailBatch: 2}
		runner, _ := newTestRunner(conn, func(o *RunnerOpts) {
			o.Config.Loader.RateLimit = 1000
		})

		err := run(t, runner, "load", "--source", writeCSV(t, 5), "--batch-size", "2")
		if err == nil || !strings.Contains(err.Error(), "batch 2 of 3") {
			t.Errorf("expected batch 2 failure, got %v", err)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		runner, output := newTestRunner(nil)
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := run(t, runner, "setup", "config", "--config", path); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), "Configuration written") {
			t.Errorf("unexpected output: %s", output.String())
		}

		if err := run(t, runner, "setup", "config", "--config", path); err == nil {
			t.Error("expected an error when the file exists")
		}
	})

	t.Run("database", func(t *testing.T) {
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "coursecat.db")
		runner, output := newTestRunner(nil, func(o *RunnerOpts) {
			o.Config.Database.Path = dbPath
		})

		if err := run(t, runner, "setup", "database", "--config", filepath.Join(dir, "missing.toml")); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}
		tu.AssertFileExists(t, dbPath)
		if !strings.Contains(output.String(), "Database ready at "+dbPath) {
			t.Errorf("unexpected output: %s", output.String())
		}
	})

	t.Run("database uses the sqlite remote", func(t *testing.T) {
		dir := t.TempDir()
		remotePath := filepath.Join(dir, "remote.db")
		runner, _ := newTestRunner(nil, func(o *RunnerOpts) {
			o.Config.Remote.Driver = shared.DriverSQLite
			o.Config.Remote.URL = remotePath
			o.Config.Database.Path = filepath.Join(dir, "unused.db")
		})

		if err := run(t, runner, "setup", "database", "--config", filepath.Join(dir, "missing.toml")); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}
		tu.AssertFileExists(t, remotePath)
	})
}

func TestNewRouter(t *testing.T) {
	runner, _ := newTestRunner(&tu.MockConnector{Unconfigured: true})
	ctrl, _ := runner.openCatalog(context.Background(), nil)
	t.Cleanup(ctrl.Close)

	srv := httptest.NewServer(runner.newRouter(ctrl))
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/api/catalog")
	if err != nil {
		t.Fatalf("GET /api/catalog failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}
	if routes := runner.newRouter(ctrl).Routes(); len(routes) != 10 || !slices.Contains(routes, "GET /healthz") {
		t.Errorf("unexpected routes: %v", routes)
	}
}
