package catalog

import "github.com/shopspring/decimal"

var services = []Service{
	{
		ID:          "s1",
		Name:        "Consultation & Assessment",
		Description: "Initial meeting to discuss your needs and plan a tailored approach.",
		DurationMin: 30,
		Price:       decimal.NewFromInt(45),
		Category:    "General",
	},
	{
		ID:          "s2",
		Name:        "Deep Tissue Massage",
		Description: "Intense pressure to relieve severe tension in the muscle and connective tissue.",
		DurationMin: 60,
		Price:       decimal.NewFromInt(90),
		Category:    "Therapy",
	},
	{
		ID:          "s3",
		Name:        "Physiotherapy Session",
		Description: "Rehabilitation treatment for injury recovery and mobility improvement.",
		DurationMin: 45,
		Price:       decimal.NewFromInt(75),
		Category:    "Medical",
	},
	{
		ID:          "s4",
		Name:        "Osteopathy Adjustment",
		Description: "Holistic manual therapy focusing on the musculoskeletal system.",
		DurationMin: 45,
		Price:       decimal.NewFromInt(85),
		Category:    "Medical",
	},
	{
		ID:          "s5",
		Name:        "Relaxation Massage",
		Description: "Gentle, flowing strokes to promote relaxation and reduce stress.",
		DurationMin: 60,
		Price:       decimal.NewFromInt(80),
		Category:    "Therapy",
	},
	{
		ID:          "s6",
		Name:        "Sports Recovery",
		Description: "Specialized session for athletes to speed up recovery after intense activity.",
		DurationMin: 50,
		Price:       decimal.NewFromInt(95),
		Category:    "Performance",
	},
}

var staff = []Staff{
	{
		ID:          "st1",
		Name:        "Dr. Sarah Lin",
		Role:        "Senior Physiotherapist",
		AvatarURL:   "https://picsum.photos/100/100?random=1",
		Specialties: []string{"s1", "s3", "s6"},
	},
	{
		ID:          "st2",
		Name:        "Marcus Thorne",
		Role:        "Massage Therapist",
		AvatarURL:   "https://picsum.photos/100/100?random=2",
		Specialties: []string{"s2", "s5", "s6"},
	},
	{
		ID:          "st3",
		Name:        "Elena Rossi",
		Role:        "Osteopath",
		AvatarURL:   "https://picsum.photos/100/100?random=3",
		Specialties: []string{"s1", "s4", "s3"},
	},
}
