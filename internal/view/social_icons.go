package view

import "strings"

// SocialIconOption 是后台选择社交平台时的一项。
type SocialIconOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type socialIconAsset struct {
	Key   string
	SVG   string
	Label string
}

var (
	socialIconDefinitions = []socialIconAsset{
		{Key: "facebook", Label: "Facebook", SVG: `<svg viewBox="0 0 24 24" fill="currentColor" aria-hidden="true"><path d="M9 8H6v4h3v12h5V12h3.642L18 8h-4V6.333C14 5.378 14.192 5 15.115 5H18V0h-3.808C10.596 0 9 1.583 9 4.615V8z"/></svg>`},
		{Key: "instagram", Label: "Instagram", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><rect x="3" y="3" width="18" height="18" rx="5"/><circle cx="12" cy="12" r="4"/><circle cx="17.5" cy="6.5" r="0.75" fill="currentColor"/></svg>`},
		{Key: "youtube", Label: "YouTube", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><rect x="2.25" y="5.25" width="19.5" height="13.5" rx="3.75"/><path d="M10 9.25v5.5l4.75-2.75z" fill="currentColor"/></svg>`},
		{Key: "tiktok", Label: "TikTok", SVG: `<svg viewBox="0 0 24 24" fill="currentColor" aria-hidden="true"><path d="M19.59 6.69a4.83 4.83 0 0 1-3.77-4.25V2h-3.45v13.67a2.89 2.89 0 0 1-5.2 1.74 2.89 2.89 0 0 1 2.31-4.64 2.93 2.93 0 0 1 .88.13V9.4a6.84 6.84 0 0 0-1-.05A6.33 6.33 0 0 0 5 20.1a6.34 6.34 0 0 0 10.86-4.43v-7a8.16 8.16 0 0 0 4.77 1.52v-3.4a4.85 4.85 0 0 1-1-.1z"/></svg>`},
		{Key: "linkedin", Label: "LinkedIn", SVG: `<svg viewBox="0 0 24 24" fill="currentColor" aria-hidden="true"><path d="M4.98 3.5C4.98 4.881 3.87 6 2.5 6S.02 4.881.02 3.5C.02 2.12 1.13 1 2.5 1s2.48 1.12 2.48 2.5zM5 8H0v16h5V8zm7.982 0H8.014v16h4.969v-8.399c0-4.67 6.029-5.052 6.029 0V24H24V13.869c0-7.88-8.922-7.593-11.018-3.714V8z"/></svg>`},
		{Key: "x", Label: "X / Twitter", SVG: `<svg viewBox="0 0 24 24" fill="currentColor" aria-hidden="true"><path d="M18.901 1.153h3.68l-8.04 9.19L24 22.846h-7.406l-5.8-7.584-6.638 7.584H.474l8.6-9.83L0 1.154h7.594l5.243 6.932ZM17.61 20.644h2.039L6.486 3.24H4.298Z"/></svg>`},
		{Key: "email", Label: "Email", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M21.75 6.75v10.5a2.25 2.25 0 0 1-2.25 2.25h-15A2.25 2.25 0 0 1 2.25 17.25V6.75M21.75 6.75A2.25 2.25 0 0 0 19.5 4.5h-15A2.25 2.25 0 0 0 2.25 6.75v.243c0 .781.405 1.506 1.071 1.916l7.5 4.615a2.25 2.25 0 0 0 2.157 0l7.5-4.615a2.25 2.25 0 0 0 1.072-1.916V6.75"/></svg>`},
		{Key: "website", Label: "Website", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M12 21c4.193 0 7.716-2.867 8.716-6.747M12 21c-4.193 0-7.716-2.867-8.716-6.747M12 21c2.485 0 4.5-4.03 4.5-9s-2.015-9-4.5-9m0 18c-2.485 0-4.5-4.03-4.5-9s2.015-9 4.5-9m0-0c3.365 0 6.299 1.847 7.843 4.582M12 3c-3.365 0-6.299 1.847-7.843 4.582m15.686 0c.737 1.305 1.157 2.812 1.157 4.418 0 .778-.099 1.533-.284 2.253m-.873 4.836C18.133 15.685 15.162 16.5 12 16.5s-6.134-.815-8.716-2.247m0 0A8.948 8.948 0 0 1 3 12c0-1.605.42-3.112 1.157-4.417"/></svg>`},
	}
	defaultSocialIcon = socialIconAsset{Key: "link", Label: "Link", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M13.19 8.688a4.5 4.5 0 0 1 1.242 7.244l-4.5 4.5a4.5 4.5 0 0 1-6.364-6.364l1.757-1.757m13.35-.622 1.757-1.757a4.5 4.5 0 0 0-6.364-6.364l-4.5 4.5a4.5 4.5 0 0 0 1.242 7.244"/></svg>`}
	socialIconLookup  = func() map[string]socialIconAsset {
		lookup := make(map[string]socialIconAsset, len(socialIconDefinitions)+1)
		for _, icon := range socialIconDefinitions {
			lookup[icon.Key] = icon
		}
		lookup[defaultSocialIcon.Key] = defaultSocialIcon
		return lookup
	}()
	// 常见别名
	socialIconAliases = map[string]string{
		"fb":      "facebook",
		"ig":      "instagram",
		"twitter": "x",
		"mail":    "email",
		"web":     "website",
	}
)

// SocialIconOptions 返回后台可选的平台列表。
func SocialIconOptions() []SocialIconOption {
	options := make([]SocialIconOption, 0, len(socialIconDefinitions))
	for _, icon := range socialIconDefinitions {
		options = append(options, SocialIconOption{Key: icon.Key, Label: icon.Label})
	}
	return options
}

// SocialIconSVGMap returns a copy of the key-to-SVG map including the default fallback.
func SocialIconSVGMap() map[string]string {
	clones := make(map[string]string, len(socialIconLookup))
	for key, icon := range socialIconLookup {
		clones[key] = icon.SVG
	}
	return clones
}

// SocialIconKey 把平台名或图标名归一化为已知 key，未知时返回 link。
func SocialIconKey(name string) string {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := socialIconAliases[trimmed]; ok {
		trimmed = alias
	}
	if _, ok := socialIconLookup[trimmed]; ok {
		return trimmed
	}
	return defaultSocialIcon.Key
}

// SocialIconSVG resolves the SVG string for a given key, falling back to the default icon.
func SocialIconSVG(key string) string {
	return socialIconLookup[SocialIconKey(key)].SVG
}
