package model

import "testing"

func TestScoreFormula(t *testing.T) {
	tests := []struct {
		correct, total int
		wantPAES       int
		wantPct        int
	}{
		{3, 4, 750, 75},
		{2, 2, 1000, 100},
		{0, 5, 0, 0},
		{1, 3, 333, 33},
		{2, 3, 666, 66},
	}

	for _, tt := range tests {
		if got := PAESScore(tt.correct, tt.total); got != tt.wantPAES {
			t.Errorf("PAESScore(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.wantPAES)
		}
		if got := ScorePercentage(tt.correct, tt.total); got != tt.wantPct {
			t.Errorf("ScorePercentage(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.wantPct)
		}
	}
}

func TestNewTopicCompleted(t *testing.T) {
	score := 750
	a := &Attempt{ID: 9, Status: AttemptStatusCompleted, TotalQuestions: 4, CorrectCount: 3, Score: &score}

	p := NewTopicCompleted(a)
	if p.Kind != KindTopicCompleted || p.AttemptID != 9 {
		t.Fatalf("unexpected payload header: %+v", p)
	}
	if p.ScorePAES != 750 || p.Score != 750 || p.ScorePercentage != 75 {
		t.Errorf("scores = %d/%d/%d, want 750/750/75", p.ScorePAES, p.Score, p.ScorePercentage)
	}
}
