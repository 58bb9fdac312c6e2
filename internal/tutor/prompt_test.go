package tutor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warm3snow/pytutor/internal/settings"
)

func TestBuildPrompt_EveryTrackAndMode(t *testing.T) {
	tracks := []Track{TrackStarter, TrackModule, TrackAdvanced}
	modes := []settings.Mode{settings.ModeGuided, settings.ModeDirect}

	for _, track := range tracks {
		for _, mode := range modes {
			t.Run(fmt.Sprintf("%s/%s", track, mode), func(t *testing.T) {
				p := BuildPrompt("  How do I loop?  ", Snapshot{Track: track, Mode: mode})

				require.NotEmpty(t, p.System)
				assert.Equal(t, "How do I loop?", p.User)
				assert.Contains(t, p.System, DefaultPolicy.Role)

				modeBlock := DefaultPolicy.Modes[mode]
				assert.Contains(t, p.System, modeBlock.Title)
				for _, line := range modeBlock.Instructions {
					assert.Contains(t, p.System, line)
				}

				trackBlock := DefaultPolicy.Tracks[track]
				assert.Contains(t, p.System, trackBlock.Title)
				for _, topic := range trackBlock.Topics {
					assert.Contains(t, p.System, topic.Title)
				}
				for _, rule := range DefaultPolicy.Rules {
					assert.Contains(t, p.System, rule)
				}

				for other, block := range DefaultPolicy.Tracks {
					if other != track {
						assert.NotContains(t, p.System, block.Title)
					}
				}
			})
		}
	}
}

func TestBuildPrompt_UnknownValuesFallBack(t *testing.T) {
	p := BuildPrompt("q", Snapshot{Track: "elsewhere", Mode: "loud"})
	assert.Contains(t, p.System, DefaultPolicy.Modes[settings.ModeGuided].Title)
	assert.Contains(t, p.System, DefaultPolicy.Tracks[TrackModule].Title)
}

func TestBuildPrompt_LearnerContext(t *testing.T) {
	p := BuildPrompt("q", Snapshot{
		Track:            TrackModule,
		Module:           3,
		Unit:             "module-3",
		Completed:        []int{1, 2},
		PracticeAttempts: 5,
		Mode:             settings.ModeDirect,
	})
	assert.Contains(t, p.System, "The student is currently on: Data Structures.")
	assert.Contains(t, p.System, "Completed modules: 1, 2.")
	assert.Contains(t, p.System, "Practice attempts so far: 5.")

	p = BuildPrompt("q", Snapshot{Track: TrackAdvanced, Unit: "rag", Mode: settings.ModeGuided})
	assert.Contains(t, p.System, "The student is currently on: Retrieval-Augmented Generation.")
	assert.NotContains(t, p.System, "Completed modules")
}

func TestPrompt_Messages(t *testing.T) {
	msgs := BuildPrompt("hi", Snapshot{Track: TrackStarter, Mode: settings.ModeGuided}).Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "user", msgs[1].Role)
	assert.Equal(t, "hi", msgs[1].Content)
}
