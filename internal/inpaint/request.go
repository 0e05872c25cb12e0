package inpaint

// Request is the JSON body of POST /api/v1/inpaint. Image and Mask are
// base64 data URLs of equal pixel size.
type Request struct {
	Image          string `json:"image"`
	Mask           string `json:"mask"`
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`

	LDMSteps   int    `json:"ldm_steps"`
	LDMSampler string `json:"ldm_sampler"`

	HDStrategy                string `json:"hd_strategy"`
	HDStrategyCropTriggerSize int    `json:"hd_strategy_crop_trigger_size"`
	HDStrategyCropMargin      int    `json:"hd_strategy_crop_margin"`
	HDStrategyResizeLimit     int    `json:"hd_strategy_resize_limit"`

	UseCroper      bool `json:"use_croper"`
	CroperX        int  `json:"croper_x"`
	CroperY        int  `json:"croper_y"`
	CroperWidth    int  `json:"croper_width"`
	CroperHeight   int  `json:"croper_height"`
	UseExtender    bool `json:"use_extender"`
	ExtenderX      int  `json:"extender_x"`
	ExtenderY      int  `json:"extender_y"`
	ExtenderWidth  int  `json:"extender_width"`
	ExtenderHeight int  `json:"extender_height"`

	SDMaskBlur        int     `json:"sd_mask_blur"`
	SDStrength        float64 `json:"sd_strength"`
	SDSteps           int     `json:"sd_steps"`
	SDGuidanceScale   float64 `json:"sd_guidance_scale"`
	SDSampler         string  `json:"sd_sampler"`
	SDSeed            int     `json:"sd_seed"`
	SDMatchHistograms bool    `json:"sd_match_histograms"`
	SDLCMLora         bool    `json:"sd_lcm_lora"`

	EnableControlnet            bool    `json:"enable_controlnet"`
	ControlnetConditioningScale float64 `json:"controlnet_conditioning_scale"`
	ControlnetMethod            string  `json:"controlnet_method"`

	EnableBrushnet            bool    `json:"enable_brushnet"`
	BrushnetMethod            string  `json:"brushnet_method"`
	BrushnetConditioningScale float64 `json:"brushnet_conditioning_scale"`

	EnablePowerpaintV2 bool   `json:"enable_powerpaint_v2"`
	PowerpaintTask     string `json:"powerpaint_task"`
}

// NewRequest returns a request with the default erase parameters for an
// image of the given size.
func NewRequest(imageURL, maskURL string, width, height int) Request {
	return Request{
		Image:                       imageURL,
		Mask:                        maskURL,
		LDMSteps:                    20,
		LDMSampler:                  "plms",
		HDStrategy:                  "Crop",
		HDStrategyCropTriggerSize:   800,
		HDStrategyCropMargin:        128,
		HDStrategyResizeLimit:       1280,
		CroperWidth:                 width,
		CroperHeight:                height,
		ExtenderWidth:               width,
		ExtenderHeight:              height,
		SDMaskBlur:                  12,
		SDStrength:                  1.0,
		SDSteps:                     50,
		SDGuidanceScale:             7.5,
		SDSampler:                   "DPM++ 2M",
		SDSeed:                      -1,
		ControlnetConditioningScale: 0.4,
		BrushnetConditioningScale:   1.0,
		PowerpaintTask:              "object-remove",
	}
}

// PluginRequest is the JSON body of POST /api/v1/run_plugin_gen_image.
type PluginRequest struct {
	Name   string  `json:"name"`
	Image  string  `json:"image"`
	Clicks [][]int `json:"clicks"`
	Scale  float64 `json:"scale"`
}
