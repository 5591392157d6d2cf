package domain

// Specialties offered by the admin form. Stored labels are free text and are
// not restricted to this list.
var Specialties = []string{
	"Bipolar",
	"LGBTQ",
	"Medication/Prescribing",
	"Suicide History/Attempts",
	"General Mental Health (anxiety, depression, stress, grief, life transitions)",
	"Men's issues",
	"Relationship Issues (family, friends, couple, etc)",
	"Trauma & PTSD",
	"Personality disorders",
	"Personal growth",
	"Substance use/abuse",
	"Pediatrics",
	"Women's issues (post-partum, infertility, family planning)",
	"Chronic pain",
	"Weight loss & nutrition",
	"Eating disorders",
	"Diabetic Diet and nutrition",
	"Coaching (leadership, career, academic and wellness)",
	"Life coaching",
	"Obsessive-compulsive disorders",
	"Neuropsychological evaluations & testing (ADHD testing)",
	"Attention and Hyperactivity (ADHD)",
	"Sleep issues",
	"Schizophrenia and psychotic disorders",
	"Learning disorders",
	"Domestic abuse",
}

// Degrees offered by the admin form.
var Degrees = []string{"MD", "PhD", "MSW", "LCSW", "LMFT", "LPC", "RN", "NP"}

// Options is the form catalog served to clients.
type Options struct {
	Specialties []string `json:"specialties"`
	Degrees     []string `json:"degrees"`
}
