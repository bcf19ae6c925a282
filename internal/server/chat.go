package server

import "strings"

// chatDisclaimer prefixes every chat answer. The chat surface is a safe
// pass-through; it never diagnoses and never touches questionnaire state.
const chatDisclaimer = "I'm an educational demo avatar, not a medical professional. " +
	"I don't diagnose or provide personalized medical advice. " +
	"If this is urgent or you have severe symptoms, seek local emergency care."

// emergencySigns route straight to the escalation answer.
var emergencySigns = []string{
	"severe chest pain", "crushing chest pain", "trouble breathing", "shortness of breath",
	"blue lips", "confusion", "cannot wake", "unconscious", "stroke", "numb on one side",
	"worst headache of my life", "suicidal", "suicide", "bleeding won't stop", "cant breathe",
}

type triageTopic struct {
	keywords []string
	answer   string
}

var triageTopics = []triageTopic{
	{
		keywords: []string{"fever", "cold", "cough", "sore throat", "flu", "runny nose", "congestion"},
		answer: "For typical cold/flu: rest, fluids, and over-the-counter symptom relief can help. " +
			"Red flags: trouble breathing, chest pain, confusion, dehydration, fever lasting more than " +
			"3-4 days, or symptoms that rapidly worsen - seek in-person care.",
	},
	{
		keywords: []string{"allergy", "allergies", "hay fever", "pollen"},
		answer: "Allergy relief often includes avoiding triggers, saline rinses, and antihistamines. " +
			"If you develop wheezing or breathing problems, seek care promptly.",
	},
	{
		keywords: []string{"stomach", "nausea", "vomit", "vomiting", "diarrhea", "gastro"},
		answer: "For mild stomach bugs: hydrate with small, frequent sips; consider oral rehydration " +
			"solutions. Seek care if there is blood, signs of dehydration, high fever, severe belly " +
			"pain, or symptoms last more than 2-3 days.",
	},
	{
		keywords: []string{"headache", "migraine"},
		answer: "Typical headaches improve with rest, hydration, and over-the-counter pain relief. " +
			"Red flags: sudden severe headache, head injury, fever with stiff neck, vision or speech " +
			"problems, weakness, or confusion - seek urgent care.",
	},
	{
		keywords: []string{"anxiety", "panic", "worry", "stress"},
		answer: "For anxiety: try slow breathing (in 4s, hold 4s, out 6-8s for a few minutes), brief " +
			"movement, and limiting caffeine. If anxiety interferes with daily life, consider talking " +
			"to a licensed therapist or your clinician.",
	},
	{
		keywords: []string{"depress", "low mood", "hopeless"},
		answer: "Low mood can improve with routine, sunlight, movement, and social contact. For " +
			"persistent symptoms or thoughts of self-harm, contact local crisis services or your clinician.",
	},
	{
		keywords: []string{"sleep", "insomnia"},
		answer: "Sleep tips: consistent schedule, dark/cool/quiet room, limit screens and heavy meals " +
			"before bed, and keep caffeine earlier in the day. If snoring with pauses or daytime " +
			"sleepiness, discuss with a clinician.",
	},
	{
		keywords: []string{"diet", "nutrition", "eat healthy", "weight", "obesity"},
		answer: "A balanced plate (vegetables, lean protein, whole grains, healthy fats) and fewer " +
			"ultra-processed foods can help. Small, steady changes beat extreme diets. For medical " +
			"conditions, a registered dietitian can tailor a plan.",
	},
	{
		keywords: []string{"exercise", "workout", "physical activity"},
		answer: "Aim for about 150 minutes per week of moderate activity plus two days of strength " +
			"training if you can. Start gently and increase gradually; any movement helps.",
	},
	{
		keywords: []string{"vaccine", "vaccination", "immunization"},
		answer: "Vaccines reduce risk of severe illness. Recommended schedules depend on age, health, " +
			"and local guidelines. Your clinician or public health site can provide the latest advice " +
			"for your region.",
	},
	{
		keywords: []string{"autism", "asd", "spectrum"},
		answer: "Autism involves differences in communication, social interaction, and sensory " +
			"processing. Only trained professionals can diagnose it. If you have questions, I can " +
			"share general information and resources.",
	},
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Triage maps a free-text chat message to a canned, disclaimer-prefixed
// answer. Emergency signs are checked first.
func Triage(message string) string {
	text := strings.ToLower(strings.TrimSpace(message))

	if text == "" {
		return chatDisclaimer + " Please enter a short question or topic."
	}

	if containsAny(text, emergencySigns) {
		return chatDisclaimer + " Your message mentions potentially urgent warning signs. " +
			"Please call your local emergency number or go to the nearest emergency department now."
	}

	for _, topic := range triageTopics {
		if containsAny(text, topic.keywords) {
			return chatDisclaimer + " " + topic.answer
		}
	}

	if text == "hi" || text == "hello" || text == "hey" || strings.Contains(text, "hello") || strings.Contains(text, "hi ") {
		return chatDisclaimer + " Hello! How are you feeling today? I can share general wellness information."
	}

	return chatDisclaimer + " Tell me what general topic you want to know about (sleep, headaches, " +
		"anxiety, cold/flu, vaccines, nutrition, exercise, etc.)."
}
