// internal/pagedata/defaults.go
//
// Curated default content.
//
// Defaults stand in whenever a page row is missing, unpublished, or holds a
// document that fails Validate.  They are also what a freshly created site
// stores in its three fixed pages.  Every call returns a fresh value so
// callers may modify the result without affecting later calls.

package pagedata

// DefaultFor returns the curated document for key.  Unknown keys fall back
// to the home default.
func DefaultFor(key PageKey) PageData {
	switch key {
	case About:
		return defaultAbout()
	case Contact:
		return defaultContact()
	default:
		return defaultHome()
	}
}

// DefaultExtra returns the placeholder document for an extra page.
func DefaultExtra(title string) PageData {
	if title == "" {
		title = "More"
	}
	return PageData{
		SEO: SEO{Title: title, Description: ""},
		Sections: []Section{
			RichText{
				Type:  KindRichText,
				Title: title,
				Body:  "<p>This page is being written.  Check back soon.</p>",
			},
		},
	}
}

func defaultHome() PageData {
	return PageData{
		SEO: SEO{
			Title:       "Home",
			Description: "Welcome.  Learn what we do and how to reach us.",
		},
		Sections: []Section{
			Hero{
				Type:     KindHero,
				Headline: "Quality work, delivered with care",
				Subtext:  "We help our neighbours get things done right the first time.",
				CTAText:  "Get in touch",
				CTAHref:  "/contact",
			},
			Services{
				Type:     KindServices,
				Title:    "What we do",
				Subtitle: "A few of the ways we can help.",
				Items: []Item{
					{Title: "Consultation", Description: "Talk through your needs with us."},
					{Title: "Delivery", Description: "We do the work on time and on budget."},
					{Title: "Support", Description: "We stay available after the job is done."},
				},
			},
			Testimonials{
				Type:  KindTestimonials,
				Title: "What customers say",
				Items: []Testimonial{
					{Quote: "Friendly, fast, and reliable.", Author: "A happy customer"},
				},
			},
		},
	}
}

func defaultAbout() PageData {
	return PageData{
		SEO: SEO{
			Title:       "About us",
			Description: "Who we are and what we value.",
		},
		Sections: []Section{
			RichText{
				Type:  KindRichText,
				Title: "Our story",
				Body:  "<p>We started small and grew by doing honest work for good people.</p>",
			},
			Values{
				Type:  KindValues,
				Title: "What we value",
				Items: []Item{
					{Title: "Honesty", Description: "Clear prices and straight answers."},
					{Title: "Craft", Description: "We take pride in the details."},
					{Title: "Community", Description: "We are local and we show up."},
				},
			},
		},
	}
}

func defaultContact() PageData {
	return PageData{
		SEO: SEO{
			Title:       "Contact",
			Description: "Get in touch with us.",
		},
		Sections: []Section{
			ContactCard{
				Type:          KindContactCard,
				Title:         "Get in touch",
				ShowPhone:     true,
				ShowEmail:     true,
				ShowAddress:   true,
				ShowMessaging: true,
			},
			FAQ{
				Type:  KindFAQ,
				Title: "Common questions",
				Items: []Question{
					{Question: "How quickly do you reply?", Answer: "Usually within one business day."},
				},
			},
		},
	}
}
