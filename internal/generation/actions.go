package generation

import "strings"

// DefaultMotionID is the provider's neutral motion preset, used when an
// action carries no dedicated one.
const DefaultMotionID = "d2389a9a-91c2-4276-bc9c-c9e35e8fb85a"

// freeformTemplate wraps a user-written action into the cinematic house style.
const freeformTemplate = "cinematic short film, professional color grading, person {action}, " +
	"natural subtle movement, realistic expression, soft cinematic lighting, " +
	"realistic skin textures, film grain, 4k, photorealistic, " +
	"modest and tasteful presentation"

type presetAction struct {
	prompt   string
	motionID string
}

var presetActions = map[string]presetAction{
	"hug": {
		prompt: "cinematic short film, professional color grading, person making gentle hugging gesture with arms, " +
			"affectionate expression, warm smile, subtle arm movement as if embracing someone, " +
			"emotional connection visible in eyes, soft natural lighting, realistic skin textures, " +
			"film grain, 24fps, 4k, photorealistic, masterpiece, modest clothing, family moment",
		motionID: "d2389a9a-91c2-4276-bc9c-c9e35e8fb85a",
	},
	"kiss": {
		prompt: "cinematic short film, professional color grading, person showing tender affectionate expression, " +
			"gentle lip movement suggesting a kiss, soft romantic smile, eyes expressing warmth, " +
			"subtle head tilt, emotional moment, soft cinematic lighting, realistic textures, ",
		motionID: "aab8440c-0d65-4554-b88a-7a9a5e084b6e",
	},
	"greeting": {
		prompt: "cinematic short film, professional color grading, person giving friendly greeting, " +
			"subtle wave of hand, warm welcoming smile, eye contact with viewer, " +
			"gentle nod, approachable expression, natural friendly gesture, " +
			"soft lighting, realistic skin details, film grain, 4k, photorealistic",
		motionID: "d2389a9a-91c2-4276-bc9c-c9e35e8fb85a",
	},
	"air": {
		prompt: "cinematic short film, professional color grading, person playfully blowing air kiss, " +
			"flirtatious but tasteful expression, subtle wink, hand gracefully raised, " +
			"charming smile, elegant gesture, lighthearted moment, soft lighting, " +
			"realistic textures, film grain, 4k, photorealistic, classy",
		motionID: "0ab33462-481e-4c78-8ffc-086bebd84187",
	},
}

// ActionPrompt resolves a named preset action to its prompt and motion
// preset, falling back to a respectful restoration-style animation.
func ActionPrompt(action string) (prompt, motionID string) {
	if preset, ok := presetActions[strings.ToLower(strings.TrimSpace(action))]; ok {
		return preset.prompt, preset.motionID
	}
	return "professional historical photo restoration, cinematic color grading, " +
			"natural subtle facial animation, gentle breathing movement, soft blink, " +
			"very slight smile, realistic skin textures restored, authentic colorization, " +
			"soft cinematic lighting, film grain, 4k, photorealistic masterpiece, " +
			"period-accurate appearance, respectful restoration",
		"aab8440c-0d65-4554-b88a-7a9a5e084b6e"
}

// FreeformPrompt wraps free user text in the cinematic template.
func FreeformPrompt(action string) string {
	return strings.Replace(freeformTemplate, "{action}", strings.ToLower(strings.TrimSpace(action)), 1)
}
