package leveling

import "testing"

func TestAdvance(t *testing.T) {
	level, xp, leveled := advance(1, 0, 50)
	if level != 1 || xp != 50 || leveled {
		t.Fatalf("expected no level-up, got level=%d xp=%d", level, xp)
	}

	level, xp, leveled = advance(1, 90, 20)
	if level != 2 || xp != 10 || !leveled {
		t.Fatalf("expected level 2 with 10 carry-over, got level=%d xp=%d", level, xp)
	}

	// Level 3 needs 300 XP.
	level, xp, leveled = advance(3, 280, 19)
	if level != 3 || xp != 299 || leveled {
		t.Fatalf("expected 299/300, got level=%d xp=%d", level, xp)
	}
	level, xp, leveled = advance(3, 299, 10)
	if level != 4 || xp != 9 || !leveled {
		t.Fatalf("expected level 4 with 9 carry-over, got level=%d xp=%d", level, xp)
	}
}
