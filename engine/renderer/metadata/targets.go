package metadata

/** @brief A role in the render-target pool. Roles are relabeled by swaps. */
type TargetID int

const (
	TARGET_GBUFFER_ALBEDO TargetID = iota
	TARGET_GBUFFER_NORMAL
	TARGET_GBUFFER_MATERIAL
	TARGET_GBUFFER_VELOCITY
	TARGET_GBUFFER_DEPTH
	TARGET_HALF_SHADOWS
	TARGET_HALF_SSAO
	TARGET_HALF_SPARE
	TARGET_FULL_HDR_LIGHT
	TARGET_FULL_HDR_LIGHT2
	TARGET_FULL_TAA_CURRENT
	TARGET_FULL_TAA_HISTORY
	TARGET_QUARTER_BLUR1
	TARGET_QUARTER_BLUR2
	TARGET_COUNT
)

var targetNames = [TARGET_COUNT]string{
	"gbuffer_albedo",
	"gbuffer_normal",
	"gbuffer_material",
	"gbuffer_velocity",
	"gbuffer_depth",
	"half_shadows",
	"half_ssao",
	"half_spare",
	"full_hdr_light",
	"full_hdr_light2",
	"full_taa_current",
	"full_taa_history",
	"quarter_blur1",
	"quarter_blur2",
}

func (t TargetID) String() string {
	if t < 0 || t >= TARGET_COUNT {
		return "unknown"
	}
	return targetNames[t]
}
