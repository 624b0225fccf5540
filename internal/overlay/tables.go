package overlay

// Static lookup tables driving the dismissal tiers. Order is priority: the
// first matching entry wins. Extend these instead of touching the traversal
// logic.

// cmpAcceptSelectors are the known "accept" controls of common
// consent-management platforms, most specific first.
var cmpAcceptSelectors = []string{
	"#onetrust-accept-btn-handler",
	"#CybotCookiebotDialogBodyLevelButtonLevelOptinAllowAll",
	"#CybotCookiebotDialogBodyButtonAccept",
	"#didomi-notice-agree-button",
	"#truste-consent-button",
	"#sp-cc-accept",
	"#axeptio_btn_acceptAll",
	"#hs-eu-confirmation-button",
	`[data-testid="uc-accept-all-button"]`,
	`.qc-cmp2-summary-buttons button[mode="primary"]`,
	".fc-cta-consent",
	".iubenda-cs-accept-btn",
	".cmplz-accept",
	".cky-btn-accept",
	".cc-btn.cc-allow",
	".cc-allow",
	".cookie-accept",
	".accept-cookies",
	`[aria-label="Accept cookies"]`,
	`[aria-label="Accept all cookies"]`,
	`button[id*="accept-cookie"]`,
	`button[class*="accept-cookie"]`,
}

// overlayHidePatterns are the generic cookie/consent/overlay shapes that the
// last-resort tier removes from layout when they sit fixed above content.
var overlayHidePatterns = []string{
	`[id*="cookie-banner"]`,
	`[class*="cookie-banner"]`,
	`[id*="cookie-consent"]`,
	`[class*="cookie-consent"]`,
	`[id*="cookieconsent"]`,
	`[class*="cookie-notice"]`,
	`[id*="consent-banner"]`,
	`[class*="consent-banner"]`,
	`[class*="consent-manager"]`,
	`[id*="gdpr"]`,
	`[class*="gdpr-banner"]`,
	`[class*="modal-backdrop"]`,
	`[class*="overlay-backdrop"]`,
}

// containerKeywordPattern marks candidate overlay containers for the
// visual-prominence tier. Matched against class and id, case-insensitive
// (compiled into the collection script).
const containerKeywordPattern = `cookie|consent|gdpr|privacy|banner|notice|onetrust|didomi`

// rejectWords disqualify a clickable from being treated as the accept
// control.
var rejectWords = []string{
	"decline",
	"reject",
	"refuse",
	"deny",
	"settings",
	"preferences",
	"customize",
	"manage",
	"options",
	"learn more",
}
