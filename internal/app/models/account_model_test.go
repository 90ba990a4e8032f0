package models

import "testing"

func TestLevelForExperienceStartsAtOne(t *testing.T) {
	if got := LevelForExperience(0); got != 1 {
		t.Errorf("expected level 1 at zero experience, got %d", got)
	}
	if got := LevelForExperience(99); got != 1 {
		t.Errorf("expected level 1 just below the first threshold, got %d", got)
	}
	if got := LevelForExperience(100); got != 2 {
		t.Errorf("expected level 2 at 100 experience, got %d", got)
	}
}

func TestLevelForExperienceIsMonotone(t *testing.T) {
	prev := LevelForExperience(0)
	for exp := int64(0); exp <= 50000; exp += 137 {
		level := LevelForExperience(exp)
		if level < prev {
			t.Fatalf("level dropped from %d to %d at experience %d", prev, level, exp)
		}
		prev = level
	}
}

func TestExperienceForNextLevelGrows(t *testing.T) {
	prev := experienceForNextLevel(1)
	for level := 2; level <= 20; level++ {
		needed := experienceForNextLevel(level)
		if needed <= prev {
			t.Fatalf("curve not increasing at level %d: %d <= %d", level, needed, prev)
		}
		prev = needed
	}
}
