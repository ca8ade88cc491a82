package metadata

// builtin vertex shaders
const (
	BUILTIN_SHADER_QUAD_VS        = "Quad_VS"
	BUILTIN_SHADER_GBUFFER_VS     = "GBuffer_VS"
	BUILTIN_SHADER_DEPTH_VS       = "Depth_VS"
	BUILTIN_SHADER_TRANSPARENT_VS = "Transparent_VS"
	BUILTIN_SHADER_COLOR_VS       = "Color_VS"
	BUILTIN_SHADER_SCREEN_VS      = "Screen_VS"
)

// builtin pixel shaders
const (
	BUILTIN_SHADER_TEXTURE_PS              = "Texture_PS"
	BUILTIN_SHADER_GBUFFER_PS              = "GBuffer_PS"
	BUILTIN_SHADER_LIGHT_PS                = "Light_PS"
	BUILTIN_SHADER_TRANSPARENT_PS          = "Transparent_PS"
	BUILTIN_SHADER_SHADOW_MAPPING_PS       = "ShadowMapping_PS"
	BUILTIN_SHADER_SSAO_PS                 = "SSAO_PS"
	BUILTIN_SHADER_BLUR_GAUSSIAN_PS        = "BlurGaussian_PS"
	BUILTIN_SHADER_BLUR_BILATERAL_PS       = "BlurGaussianBilateral_PS"
	BUILTIN_SHADER_TAA_PS                  = "TAA_PS"
	BUILTIN_SHADER_DOWNSAMPLE_BOX_PS       = "DownsampleBox_PS"
	BUILTIN_SHADER_BLOOM_BRIGHT_PS         = "BloomBright_PS"
	BUILTIN_SHADER_BLOOM_BLEND_PS          = "BloomBlend_PS"
	BUILTIN_SHADER_MOTION_BLUR_PS          = "MotionBlur_PS"
	BUILTIN_SHADER_DITHERING_PS            = "Dithering_PS"
	BUILTIN_SHADER_TONEMAPPING_PS          = "ToneMapping_PS"
	BUILTIN_SHADER_LUMA_PS                 = "Luma_PS"
	BUILTIN_SHADER_FXAA_PS                 = "FXAA_PS"
	BUILTIN_SHADER_SHARPENING_PS           = "Sharpening_PS"
	BUILTIN_SHADER_CHROMATIC_ABERRATION_PS = "ChromaticAberration_PS"
	BUILTIN_SHADER_GAMMA_CORRECTION_PS     = "GammaCorrection_PS"
	BUILTIN_SHADER_COLOR_PS                = "Color_PS"
	BUILTIN_SHADER_FONT_PS                 = "Font_PS"
	BUILTIN_SHADER_DEBUG_NORMAL_PS         = "DebugNormal_PS"
	BUILTIN_SHADER_DEBUG_VELOCITY_PS       = "DebugVelocity_PS"
	BUILTIN_SHADER_DEBUG_DEPTH_PS          = "DebugDepth_PS"
)
