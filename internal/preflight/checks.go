package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"nimbus/internal/catalog"
	"nimbus/internal/config"
	"nimbus/internal/llm"
)

// checkTimeout bounds each remote check so `nimbus status` stays responsive.
const checkTimeout = 30 * time.Second

// CheckLLM makes one HealthCheck call against the fallback model.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(ctx); err != nil {
		return Result{Name: name, Detail: describeRemoteError(err, "LLM endpoint")}
	}
	return Result{Name: name, Passed: true, Detail: "model " + cfg.Model + " answered"}
}

// CheckCatalog fetches the current term listing to confirm the OpenData key
// works.
func CheckCatalog(ctx context.Context, cfg config.Catalog) Result {
	const name = "Course catalog"

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	client, err := catalog.New(catalog.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Timeout: timeout})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	term := catalog.TermCode(time.Now())
	courses, err := client.Courses(ctx, term)
	if err != nil {
		return Result{Name: name, Detail: describeRemoteError(err, "OpenData API")}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d courses listed for term %s", len(courses), term)}
}

// CheckDirectoryAccess passes when path is a directory nimbus can list,
// create files in and move files out of.
func CheckDirectoryAccess(name, path string) Result {
	fail := func(format string, args ...any) Result {
		return Result{Name: name, Detail: path + ": " + fmt.Sprintf(format, args...)}
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fail("does not exist")
	case err != nil:
		return fail("%v", err)
	case !info.IsDir():
		return fail("not a directory")
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fail("no read/write access (%v)", err)
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckCourseDirectories checks every configured course folder. Review moves
// refuse to create them, so a missing one means failed moves later.
func CheckCourseDirectories(cfg *config.Config) []Result {
	if len(cfg.Courses) == 0 {
		return []Result{{Name: "Courses", Detail: "no courses configured"}}
	}
	results := make([]Result, 0, len(cfg.Courses))
	for _, course := range cfg.Courses {
		results = append(results, CheckDirectoryAccess("Course "+course.Name, cfg.CourseDir(course)))
	}
	return results
}

func describeRemoteError(err error, service string) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return service + " did not answer within " + checkTimeout.String()
	}
	return err.Error()
}
