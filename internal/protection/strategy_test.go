package protection

import (
	"testing"

	"bulwark/internal/services/par2"
)

func TestSelectStrategyTiers(t *testing.T) {
	cases := []struct {
		chunks  int
		tier    Tier
		params  par2.Params
		group   int
		direct  bool
		sliding bool
		overall bool
	}{
		{chunks: 1, tier: TierTiny, params: par2.Params{RecoveryFiles: 4, Redundancy: 30, MemoryMiB: 2048}, group: 1, direct: true},
		{chunks: 2, tier: TierTiny, params: par2.Params{RecoveryFiles: 4, Redundancy: 30, MemoryMiB: 2048}, group: 2, direct: true},
		{chunks: 3, tier: TierSmall, params: par2.Params{RecoveryFiles: 8, Redundancy: 25, MemoryMiB: 4096}, group: 3, direct: true},
		{chunks: 10, tier: TierSmall, params: par2.Params{RecoveryFiles: 8, Redundancy: 25, MemoryMiB: 4096}, group: 10, direct: true},
		{chunks: 11, tier: TierMedium, params: par2.Params{RecoveryFiles: 12, Redundancy: 20, MemoryMiB: 6144}, group: 5, overall: true},
		{chunks: 20, tier: TierMedium, params: par2.Params{RecoveryFiles: 12, Redundancy: 20, MemoryMiB: 6144}, group: 5, overall: true},
		{chunks: 21, tier: TierLarge, params: par2.Params{RecoveryFiles: 16, Redundancy: 18, MemoryMiB: 8192}, group: 10, overall: true},
		{chunks: 40, tier: TierLarge, params: par2.Params{RecoveryFiles: 16, Redundancy: 18, MemoryMiB: 8192}, group: 10, overall: true},
		{chunks: 41, tier: TierXLarge, params: par2.Params{RecoveryFiles: 24, Redundancy: 15, MemoryMiB: 10240}, group: 20, sliding: true, overall: true},
		{chunks: 70, tier: TierXLarge, params: par2.Params{RecoveryFiles: 24, Redundancy: 15, MemoryMiB: 10240}, group: 20, sliding: true, overall: true},
		{chunks: 71, tier: TierHuge, params: par2.Params{RecoveryFiles: 32, Redundancy: 15, MemoryMiB: 12288}, group: 40, sliding: true, overall: true},
		{chunks: 200, tier: TierHuge, params: par2.Params{RecoveryFiles: 32, Redundancy: 15, MemoryMiB: 12288}, group: 40, sliding: true, overall: true},
	}

	for _, tc := range cases {
		strategy := SelectStrategy(tc.chunks)
		if strategy.Tier != tc.tier {
			t.Errorf("SelectStrategy(%d).Tier = %s, want %s", tc.chunks, strategy.Tier, tc.tier)
		}
		if strategy.Params != tc.params {
			t.Errorf("SelectStrategy(%d).Params = %s, want %s", tc.chunks, strategy.Params, tc.params)
		}
		if strategy.GroupSize != tc.group {
			t.Errorf("SelectStrategy(%d).GroupSize = %d, want %d", tc.chunks, strategy.GroupSize, tc.group)
		}
		if strategy.Direct != tc.direct {
			t.Errorf("SelectStrategy(%d).Direct = %v, want %v", tc.chunks, strategy.Direct, tc.direct)
		}
		if strategy.UseSlidingWindow != tc.sliding {
			t.Errorf("SelectStrategy(%d).UseSlidingWindow = %v, want %v", tc.chunks, strategy.UseSlidingWindow, tc.sliding)
		}
		if strategy.BuildOverallLayer != tc.overall {
			t.Errorf("SelectStrategy(%d).BuildOverallLayer = %v, want %v", tc.chunks, strategy.BuildOverallLayer, tc.overall)
		}
	}
}

func TestSelectStrategyWindowBoundary(t *testing.T) {
	at70 := SelectStrategy(70)
	if !at70.UseSlidingWindow || at70.WindowSize != 20 || at70.WindowSlide != 5 {
		t.Fatalf("SelectStrategy(70) window = %d/%d sliding=%v, want 20/5 sliding",
			at70.WindowSize, at70.WindowSlide, at70.UseSlidingWindow)
	}
	at71 := SelectStrategy(71)
	if !at71.UseSlidingWindow || at71.WindowSize != 40 || at71.WindowSlide != 10 {
		t.Fatalf("SelectStrategy(71) window = %d/%d sliding=%v, want 40/10 sliding",
			at71.WindowSize, at71.WindowSlide, at71.UseSlidingWindow)
	}
}

func TestSelectStrategyMonotonic(t *testing.T) {
	prev := SelectStrategy(0)
	for chunks := 1; chunks <= 200; chunks++ {
		current := SelectStrategy(chunks)
		if current.Params.MemoryMiB < prev.Params.MemoryMiB {
			t.Fatalf("memory budget shrank from %d to %d at %d chunks",
				prev.Params.MemoryMiB, current.Params.MemoryMiB, chunks)
		}
		if current.Params.Redundancy > prev.Params.Redundancy {
			t.Fatalf("redundancy grew from %d to %d at %d chunks",
				prev.Params.Redundancy, current.Params.Redundancy, chunks)
		}
		prev = current
	}
}

func TestSelectStrategySlideAlwaysSmallerThanWindow(t *testing.T) {
	for chunks := 0; chunks <= 200; chunks++ {
		strategy := SelectStrategy(chunks)
		if !strategy.UseSlidingWindow {
			continue
		}
		if strategy.WindowSlide >= strategy.WindowSize {
			t.Fatalf("SelectStrategy(%d): slide %d must be smaller than window %d",
				chunks, strategy.WindowSlide, strategy.WindowSize)
		}
	}
}

func TestSelectStrategyOverallCheaperThanGroups(t *testing.T) {
	for chunks := 11; chunks <= 200; chunks++ {
		strategy := SelectStrategy(chunks)
		if !strategy.BuildOverallLayer {
			t.Fatalf("SelectStrategy(%d): expected overall layer above 10 chunks", chunks)
		}
		if strategy.OverallParams.Redundancy >= strategy.Params.Redundancy {
			t.Fatalf("SelectStrategy(%d): overall redundancy %d should undercut group redundancy %d",
				chunks, strategy.OverallParams.Redundancy, strategy.Params.Redundancy)
		}
	}
}

func TestOverallParams(t *testing.T) {
	cases := []struct {
		discovered int
		want       par2.Params
	}{
		{discovered: 1, want: par2.Params{RecoveryFiles: 4, Redundancy: 30, MemoryMiB: 2048}},
		{discovered: 2, want: par2.Params{RecoveryFiles: 4, Redundancy: 30, MemoryMiB: 2048}},
		{discovered: 7, want: par2.Params{RecoveryFiles: 8, Redundancy: 25, MemoryMiB: 4096}},
		{discovered: 11, want: par2.Params{RecoveryFiles: 16, Redundancy: 15, MemoryMiB: 6144}},
		{discovered: 20, want: par2.Params{RecoveryFiles: 16, Redundancy: 15, MemoryMiB: 6144}},
		{discovered: 33, want: par2.Params{RecoveryFiles: 24, Redundancy: 12, MemoryMiB: 8192}},
		{discovered: 70, want: par2.Params{RecoveryFiles: 32, Redundancy: 10, MemoryMiB: 10240}},
		{discovered: 71, want: par2.Params{RecoveryFiles: 40, Redundancy: 8, MemoryMiB: 12288}},
		{discovered: 500, want: par2.Params{RecoveryFiles: 40, Redundancy: 8, MemoryMiB: 12288}},
	}
	for _, tc := range cases {
		if got := OverallParams(tc.discovered); got != tc.want {
			t.Errorf("OverallParams(%d) = %s, want %s", tc.discovered, got, tc.want)
		}
	}
}

func TestTierString(t *testing.T) {
	names := map[Tier]string{
		TierTiny:   "tiny",
		TierSmall:  "small",
		TierMedium: "medium",
		TierLarge:  "large",
		TierXLarge: "xlarge",
		TierHuge:   "huge",
	}
	for tier, want := range names {
		if got := tier.String(); got != want {
			t.Errorf("Tier(%d).String() = %q, want %q", tier, got, want)
		}
	}
	if got := Tier(99).String(); got != "unknown" {
		t.Errorf("Tier(99).String() = %q, want unknown", got)
	}
}
