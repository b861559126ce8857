package protection

import "bulwark/internal/services/par2"

// Tier identifies one row of the strategy table. The set is closed: every
// chunk count maps to exactly one tier.
type Tier int

const (
	// TierTiny covers archives of at most 2 chunks.
	TierTiny Tier = iota
	// TierSmall covers 3 to 10 chunks.
	TierSmall
	// TierMedium covers 11 to 20 chunks.
	TierMedium
	// TierLarge covers 21 to 40 chunks.
	TierLarge
	// TierXLarge covers 41 to 70 chunks.
	TierXLarge
	// TierHuge covers everything above 70 chunks.
	TierHuge
)

func (t Tier) String() string {
	switch t {
	case TierTiny:
		return "tiny"
	case TierSmall:
		return "small"
	case TierMedium:
		return "medium"
	case TierLarge:
		return "large"
	case TierXLarge:
		return "xlarge"
	case TierHuge:
		return "huge"
	default:
		return "unknown"
	}
}

// Strategy fixes every knob of one protection run. Small archives get
// proportionally more redundancy because the fixed cost is cheap relative to
// their size; large archives trade redundancy for bounded par2 memory and
// overlapping window coverage.
type Strategy struct {
	Tier      Tier
	GroupSize int
	Params    par2.Params

	// Direct marks the single-group tiers whose recovery set is built in
	// the working directory itself, with no staging subdirectory.
	Direct bool

	UseSlidingWindow bool
	WindowSize       int
	WindowSlide      int

	// BuildOverallLayer enables the archive-wide recovery set. Off for the
	// single-group tiers, where per-group protection already spans the
	// whole archive.
	BuildOverallLayer bool
	OverallParams     par2.Params
}

// SelectStrategy maps a total chunk count to its tier. Pure and total:
// memory budgets never shrink and redundancy percentages never grow as the
// count rises.
func SelectStrategy(totalChunks int) Strategy {
	switch {
	case totalChunks <= 2:
		return Strategy{
			Tier:      TierTiny,
			GroupSize: totalChunks,
			Params:    par2.Params{RecoveryFiles: 4, Redundancy: 30, MemoryMiB: 2048},
			Direct:    true,
		}
	case totalChunks <= 10:
		return Strategy{
			Tier:      TierSmall,
			GroupSize: totalChunks,
			Params:    par2.Params{RecoveryFiles: 8, Redundancy: 25, MemoryMiB: 4096},
			Direct:    true,
		}
	case totalChunks <= 20:
		return Strategy{
			Tier:              TierMedium,
			GroupSize:         5,
			Params:            par2.Params{RecoveryFiles: 12, Redundancy: 20, MemoryMiB: 6144},
			BuildOverallLayer: true,
			OverallParams:     par2.Params{RecoveryFiles: 16, Redundancy: 15, MemoryMiB: 6144},
		}
	case totalChunks <= 40:
		return Strategy{
			Tier:              TierLarge,
			GroupSize:         10,
			Params:            par2.Params{RecoveryFiles: 16, Redundancy: 18, MemoryMiB: 8192},
			BuildOverallLayer: true,
			OverallParams:     par2.Params{RecoveryFiles: 24, Redundancy: 12, MemoryMiB: 8192},
		}
	case totalChunks <= 70:
		return Strategy{
			Tier:              TierXLarge,
			GroupSize:         20,
			Params:            par2.Params{RecoveryFiles: 24, Redundancy: 15, MemoryMiB: 10240},
			UseSlidingWindow:  true,
			WindowSize:        20,
			WindowSlide:       5,
			BuildOverallLayer: true,
			OverallParams:     par2.Params{RecoveryFiles: 32, Redundancy: 10, MemoryMiB: 10240},
		}
	default:
		return Strategy{
			Tier:              TierHuge,
			GroupSize:         40,
			Params:            par2.Params{RecoveryFiles: 32, Redundancy: 15, MemoryMiB: 12288},
			UseSlidingWindow:  true,
			WindowSize:        40,
			WindowSlide:       10,
			BuildOverallLayer: true,
			OverallParams:     par2.Params{RecoveryFiles: 40, Redundancy: 8, MemoryMiB: 12288},
		}
	}
}

// OverallParams returns the archive-wide layer's parameters for the number
// of volume files actually present when the layer is built. Working from
// the discovered count rather than the planned one keeps the overall
// recovery strength matched to what is on disk.
func OverallParams(discovered int) par2.Params {
	switch {
	case discovered <= 2:
		return par2.Params{RecoveryFiles: 4, Redundancy: 30, MemoryMiB: 2048}
	case discovered <= 10:
		return par2.Params{RecoveryFiles: 8, Redundancy: 25, MemoryMiB: 4096}
	case discovered <= 20:
		return par2.Params{RecoveryFiles: 16, Redundancy: 15, MemoryMiB: 6144}
	case discovered <= 40:
		return par2.Params{RecoveryFiles: 24, Redundancy: 12, MemoryMiB: 8192}
	case discovered <= 70:
		return par2.Params{RecoveryFiles: 32, Redundancy: 10, MemoryMiB: 10240}
	default:
		return par2.Params{RecoveryFiles: 40, Redundancy: 8, MemoryMiB: 12288}
	}
}
