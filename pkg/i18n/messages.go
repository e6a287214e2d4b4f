package i18n

import "sync"

// Message keys used across the site.
const (
	KeyNameRequired        = "validation.name.required"
	KeyNameTooShort        = "validation.name.min"
	KeyEmailRequired       = "validation.email.required"
	KeyEmailInvalid        = "validation.email.invalid"
	KeyPhoneRequired       = "validation.phone.required"
	KeyPhoneInvalid        = "validation.phone.invalid"
	KeyDescriptionRequired = "validation.description.required"
	KeyDescriptionTooShort = "validation.description.min"

	KeySubmitLabel   = "contact.submit.label"
	KeySubmitBusy    = "contact.submit.busy"
	KeySubmitFailed  = "contact.submit.failed"
	KeySubmitLimited = "contact.submit.limited"
	KeySubmitConfirm = "contact.submit.confirm"
	KeySubmitRetry   = "contact.submit.retry"
	KeySuccessTitle  = "contact.success.title"
	KeySuccessBody   = "contact.success.body"
	KeySuccessUrgent = "contact.success.urgent"

	KeyMailSubject     = "mail.subject"
	KeyMailHeading     = "mail.heading"
	KeyMailNotProvided = "mail.not_provided"
	KeyMailNotSelected = "mail.not_selected"
	KeyYes             = "common.yes"
	KeyNo              = "common.no"
)

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalogue with Norwegian and English copy.
// The catalogue is shared; callers that need to add messages should build
// their own with NewCatalog and DefaultMessages.
func Default() *Catalog {
	defaultOnce.Do(func() {
		catalog := NewCatalog(LocaleNorwegian)
		for locale, messages := range DefaultMessages() {
			catalog.Add(locale, messages)
		}
		defaultCatalog = catalog
	})
	return defaultCatalog
}

// DefaultMessages returns a fresh copy of the built-in messages by locale.
func DefaultMessages() map[string]map[string]string {
	return map[string]map[string]string{
		LocaleNorwegian: {
			KeyNameRequired:        "Vennligst oppgi ditt navn",
			KeyNameTooShort:        "Navnet må være minst 2 tegn",
			KeyEmailRequired:       "Vennligst oppgi din e-postadresse",
			KeyEmailInvalid:        "Vennligst oppgi en gyldig e-postadresse",
			KeyPhoneRequired:       "Vennligst oppgi ditt telefonnummer",
			KeyPhoneInvalid:        "Vennligst oppgi et gyldig telefonnummer",
			KeyDescriptionRequired: "Vennligst beskriv prosjektet ditt",
			KeyDescriptionTooShort: "Beskrivelsen må være minst 10 tegn",

			KeySubmitLabel:   "Send henvendelse",
			KeySubmitBusy:    "Sender...",
			KeySubmitFailed:  "Beklager, noe gikk galt. Vennligst prøv igjen eller ring oss direkte.",
			KeySubmitLimited: "Du har sendt mange henvendelser på kort tid. Vennligst vent litt eller ring oss direkte.",
			KeySubmitConfirm: "Send henvendelsen nå?",
			KeySubmitRetry:   "Vil du prøve igjen?",
			KeySuccessTitle:  "Takk for din henvendelse!",
			KeySuccessBody:   "Vi har mottatt meldingen din og vil kontakte deg så snart som mulig, vanligvis innen én dag.",
			KeySuccessUrgent: "Haster det? Ring oss direkte på",

			"field.name.label":        "Navn",
			"field.email.label":       "E-post",
			"field.phone.label":       "Telefon",
			"field.address.label":     "Adresse/område",
			"field.projectType.label": "Type prosjekt",
			"field.description.label": "Beskrivelse",
			"field.siteVisit.label":   "Ønsker befaring",

			"projectType.none":       "Velg type prosjekt",
			"projectType.renovation": "Renovering",
			"projectType.extension":  "Tilbygg",
			"projectType.newbuild":   "Nybygg",
			"projectType.bathroom":   "Bad",
			"projectType.other":      "Annet",

			"contact.title":    "Kontakt oss",
			"contact.subtitle": "Fortell oss om prosjektet ditt, så tar vi kontakt.",
			"projects.title":   "Prosjekter",
			"projects.all":     "Alle",

			KeyMailSubject:     "Ny henvendelse fra %s",
			KeyMailHeading:     "Ny henvendelse fra nettsiden",
			KeyMailNotProvided: "Ikke oppgitt",
			KeyMailNotSelected: "Ikke valgt",
			KeyYes:             "Ja",
			KeyNo:              "Nei",
		},
		LocaleEnglish: {
			KeyNameRequired:        "Please provide your name",
			KeyNameTooShort:        "Name must be at least 2 characters",
			KeyEmailRequired:       "Please provide your email address",
			KeyEmailInvalid:        "Please provide a valid email address",
			KeyPhoneRequired:       "Please provide your phone number",
			KeyPhoneInvalid:        "Please provide a valid phone number",
			KeyDescriptionRequired: "Please describe your project",
			KeyDescriptionTooShort: "Description must be at least 10 characters",

			KeySubmitLabel:   "Send enquiry",
			KeySubmitBusy:    "Sending...",
			KeySubmitFailed:  "Sorry, something went wrong. Please try again or call us directly.",
			KeySubmitLimited: "You have sent several enquiries in a short time. Please wait a moment or call us directly.",
			KeySubmitConfirm: "Send the enquiry now?",
			KeySubmitRetry:   "Would you like to try again?",
			KeySuccessTitle:  "Thank you for your enquiry!",
			KeySuccessBody:   "We have received your message and will get back to you as soon as possible, usually within one day.",
			KeySuccessUrgent: "In a hurry? Call us directly on",

			"field.name.label":        "Name",
			"field.email.label":       "Email",
			"field.phone.label":       "Phone",
			"field.address.label":     "Address/area",
			"field.projectType.label": "Project type",
			"field.description.label": "Description",
			"field.siteVisit.label":   "Request a site visit",

			"projectType.none":       "Choose project type",
			"projectType.renovation": "Renovation",
			"projectType.extension":  "Extension",
			"projectType.newbuild":   "New build",
			"projectType.bathroom":   "Bathroom",
			"projectType.other":      "Other",

			"contact.title":    "Contact us",
			"contact.subtitle": "Tell us about your project and we will be in touch.",
			"projects.title":   "Projects",
			"projects.all":     "All",

			KeyMailSubject:     "New enquiry from %s",
			KeyMailHeading:     "New enquiry from the website",
			KeyMailNotProvided: "Not provided",
			KeyMailNotSelected: "Not selected",
			KeyYes:             "Yes",
			KeyNo:              "No",
		},
	}
}
