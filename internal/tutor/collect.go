package tutor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/warm3snow/pytutor/internal/progress"
	"github.com/warm3snow/pytutor/internal/settings"
)

var (
	starterPath  = regexp.MustCompile(`(?:^|/)starter(?:/([a-z0-9_-]+?))?(?:\.html)?/?$`)
	advancedPath = regexp.MustCompile(`(?:^|/)(?:ai|advanced)(?:/([a-z0-9_-]+?))?(?:\.html)?/?$`)
	modulePath   = regexp.MustCompile(`(?:^|/)modules?[-/]?(\d+)`)
	lessonNumber = regexp.MustCompile(`(\d+)$`)
)

// Collect derives the learner context from the current location and the
// saved progress. It has no failure path: unknown locations fall back to
// the module track with no current module.
func Collect(location string, rec progress.Record, mode settings.Mode) Snapshot {
	snap := Snapshot{
		Track:            TrackModule,
		Completed:        rec.CompletedModules(),
		PracticeAttempts: rec.PracticeAttempts,
		Mode:             mode,
	}
	if snap.Completed == nil {
		snap.Completed = []int{}
	}

	path := strings.ToLower(strings.TrimSpace(location))
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	switch {
	case starterPath.MatchString(path):
		snap.Track = TrackStarter
		m := starterPath.FindStringSubmatch(path)
		snap.Unit = unitName(m[1])
		if n := lessonNumber.FindString(snap.Unit); n != "" {
			snap.Module, _ = strconv.Atoi(n)
		}
	case advancedPath.MatchString(path):
		snap.Track = TrackAdvanced
		snap.Unit = unitName(advancedPath.FindStringSubmatch(path)[1])
	case modulePath.MatchString(path):
		n, err := strconv.Atoi(modulePath.FindStringSubmatch(path)[1])
		if err == nil {
			snap.Module = n
			snap.Unit = "module-" + strconv.Itoa(n)
		}
	}

	return snap
}

// unitName drops the index page name, which stands for the track itself.
func unitName(slug string) string {
	if slug == "index" {
		return ""
	}
	return slug
}
