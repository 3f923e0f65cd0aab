package bot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_FullWalk(t *testing.T) {
	s := NewSession(42, "victim", "Иван")
	require.Equal(t, StageCasinoName, s.Stage)

	assert.True(t, s.HandleText("Mega888"))
	assert.Equal(t, StageCasinoLink, s.Stage)

	assert.True(t, s.HandleText("www.mega888.com"))
	assert.Equal(t, StageAmount, s.Stage)

	assert.True(t, s.HandleText("5000"))
	assert.Equal(t, StageDescription, s.Stage)

	assert.True(t, s.HandleText("Не выводят выигрыш"))
	assert.Equal(t, StageScreenshots, s.Stage)

	count, advanced, ok := s.AddScreenshot("file-1")
	assert.True(t, ok)
	assert.False(t, advanced)
	assert.Equal(t, 1, count)

	assert.True(t, s.Done())
	assert.Equal(t, StageConfirm, s.Stage)

	report := s.Report()
	assert.Equal(t, int64(42), report.UserID)
	assert.Equal(t, "victim", report.Username)
	assert.Equal(t, "Иван", report.FirstName)
	assert.Equal(t, "Mega888", report.CasinoName)
	assert.Equal(t, "www.mega888.com", report.CasinoLink)
	assert.Equal(t, "5000", report.AmountLost)
	assert.Equal(t, "Не выводят выигрыш", report.Description)
	assert.Equal(t, []string{"file-1"}, report.Screenshots)
}

func TestSession_HandleText(t *testing.T) {
	t.Run("EmptyInputRejected", func(t *testing.T) {
		s := NewSession(1, "", "")
		assert.False(t, s.HandleText(""))
		assert.False(t, s.HandleText("   \n\t "))
		assert.Equal(t, StageCasinoName, s.Stage)
		assert.Empty(t, s.CasinoName)
	})

	t.Run("InputTrimmed", func(t *testing.T) {
		s := NewSession(1, "", "")
		require.True(t, s.HandleText("  Lucky Palace  "))
		assert.Equal(t, "Lucky Palace", s.CasinoName)
	})

	t.Run("RejectedOnNonTextStages", func(t *testing.T) {
		s := NewSession(1, "", "")
		s.Stage = StageScreenshots
		assert.False(t, s.HandleText("просто текст"))
		assert.Equal(t, StageScreenshots, s.Stage)

		s.Stage = StageConfirm
		assert.False(t, s.HandleText("да"))
		assert.Equal(t, StageConfirm, s.Stage)
	})
}

func TestSession_Skip(t *testing.T) {
	t.Run("OptionalStages", func(t *testing.T) {
		s := NewSession(1, "", "")
		require.True(t, s.HandleText("Mega888"))

		assert.True(t, s.Skip())
		assert.Equal(t, StageAmount, s.Stage)
		assert.Empty(t, s.CasinoLink)

		assert.True(t, s.Skip())
		assert.Equal(t, StageDescription, s.Stage)
		assert.Empty(t, s.AmountLost)
	})

	t.Run("RequiredStagesNotSkippable", func(t *testing.T) {
		s := NewSession(1, "", "")
		assert.False(t, s.Skip()) // название казино

		s.Stage = StageDescription
		assert.False(t, s.Skip())
		assert.Equal(t, StageDescription, s.Stage)

		s.Stage = StageConfirm
		assert.False(t, s.Skip())
	})

	t.Run("SkipClearsCollectedScreenshots", func(t *testing.T) {
		s := NewSession(1, "", "")
		s.Stage = StageScreenshots
		_, _, ok := s.AddScreenshot("file-1")
		require.True(t, ok)

		assert.True(t, s.Skip())
		assert.Equal(t, StageConfirm, s.Stage)
		assert.Empty(t, s.Screenshots)
	})
}

func TestSession_Done(t *testing.T) {
	s := NewSession(1, "", "")
	assert.False(t, s.Done())

	s.Stage = StageScreenshots
	assert.True(t, s.Done())
	assert.Equal(t, StageConfirm, s.Stage)

	assert.False(t, s.Done())
}

func TestSession_AddScreenshot(t *testing.T) {
	t.Run("AutoAdvanceAtLimit", func(t *testing.T) {
		s := NewSession(1, "", "")
		s.Stage = StageScreenshots

		for i := 1; i < maxScreenshots; i++ {
			count, advanced, ok := s.AddScreenshot(fmt.Sprintf("file-%d", i))
			require.True(t, ok)
			assert.False(t, advanced)
			assert.Equal(t, i, count)
		}

		count, advanced, ok := s.AddScreenshot("file-last")
		assert.True(t, ok)
		assert.True(t, advanced)
		assert.Equal(t, maxScreenshots, count)
		assert.Equal(t, StageConfirm, s.Stage)
	})

	t.Run("RejectedOutsideScreenshotsStage", func(t *testing.T) {
		s := NewSession(1, "", "")
		_, _, ok := s.AddScreenshot("file-1")
		assert.False(t, ok)
		assert.Empty(t, s.Screenshots)

		s.Stage = StageConfirm
		_, _, ok = s.AddScreenshot("file-1")
		assert.False(t, ok)
	})
}
