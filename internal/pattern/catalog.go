package pattern

// DefaultCatalog is the pattern set shipped when no PATTERNS_FILE is
// configured: per-category banks covering credentials, private keys, PII,
// prompt injection, jailbreaks, content moderation, and SQL/command
// injection.
func DefaultCatalog() *Snapshot {
	snap, err := compile(defaultFile())
	if err != nil {
		// The embedded catalog is part of the binary; a compile failure here
		// is a programmer error caught by the package's tests, not a
		// runtime condition callers should handle.
		panic("pattern: embedded default catalog failed to compile: " + err.Error())
	}
	return snap
}

func defaultFile() File {
	return File{Patterns: map[string][]Source{
		"api_keys": {
			{Name: "openai_api_key", Regex: `sk-[A-Za-z0-9]{32,}`, Severity: "critical", Description: "OpenAI API key"},
			{Name: "aws_access_key_id", Regex: `\bAKIA[0-9A-Z]{16}\b`, Severity: "critical", Description: "AWS access key ID"},
			{Name: "generic_bearer_token", Regex: `(?i)bearer\s+[A-Za-z0-9_\-\.]{20,}`, Severity: "high", ContextTerms: []string{"authorization", "token", "bearer"}, Description: "Bearer token"},
		},
		"private_keys": {
			{Name: "pem_private_key", Regex: `-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]+?-----END [A-Z ]*PRIVATE KEY-----`, Severity: "critical", Validator: "key_fence", Description: "PEM/OpenSSH private key block"},
		},
		"pii": {
			{Name: "us_ssn", Regex: `\b\d{3}[-\s]\d{2}[-\s]\d{4}\b`, Severity: "high", Description: "US Social Security Number"},
			{Name: "credit_card_visa", Regex: `\b4\d{3}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, Severity: "high", Validator: "luhn", Description: "Visa credit card"},
			{Name: "credit_card_mastercard", Regex: `\b5[1-5]\d{2}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, Severity: "high", Validator: "luhn", Description: "Mastercard credit card"},
			{Name: "credit_card_amex", Regex: `\b3[47]\d{2}[-\s]?\d{6}[-\s]?\d{5}\b`, Severity: "high", Validator: "luhn", Description: "American Express credit card"},
			{Name: "credit_card_discover", Regex: `\b6011[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, Severity: "high", Validator: "luhn", Description: "Discover credit card"},
			{Name: "email_address", Regex: `\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`, Severity: "medium", Description: "Email address"},
			{Name: "us_phone_number", Regex: `(\+1[-\s]?)?\(?\d{3}\)?[-\s.]?\d{3}[-\s.]?\d{4}\b`, Severity: "low", Description: "US phone number"},
			{Name: "intl_phone_number", Regex: `\+\d{1,3}[-\s]?\d{1,4}[-\s]?\d{3,4}[-\s]?\d{3,4}\b`, Severity: "low", Description: "International phone number"},
			{Name: "iban", Regex: `\b[A-Z]{2}\d{2}[-\s]?[A-Z0-9]{4}[-\s]?(?:[A-Z0-9]{4}[-\s]?){1,7}[A-Z0-9]{1,4}\b`, Severity: "high", Description: "IBAN"},
		},
		"prompt_injection": {
			{Name: "ignore_previous_instructions", Regex: `(?i)ignore\s+(all\s+)?previous\s+instructions`, Severity: "high", Description: "override: ignore previous instructions"},
			{Name: "ignore_above_instructions", Regex: `(?i)ignore\s+(all\s+)?above\s+instructions`, Severity: "high", Description: "override: ignore above instructions"},
			{Name: "disregard_instructions", Regex: `(?i)disregard\s+(all\s+)?(previous|prior|above)\s+(instructions|rules|guidelines)`, Severity: "high", Description: "override: disregard instructions"},
			{Name: "forget_instructions", Regex: `(?i)forget\s+(all\s+)?(previous|prior|above)\s+(instructions|context)`, Severity: "high", Description: "override: forget instructions"},
			{Name: "identity_override_you_are_now", Regex: `(?i)you\s+are\s+now\s+`, Severity: "medium", Description: "identity override: you are now"},
			{Name: "identity_override_from_now_on", Regex: `(?i)from\s+now\s+on\s+you\s+(are|will|must|should)`, Severity: "medium", Description: "identity override: from now on"},
			{Name: "identity_override_new_role", Regex: `(?i)your\s+new\s+(role|identity|persona|instructions)\s+(is|are)`, Severity: "medium", Description: "identity override: new role"},
			{Name: "delimiter_injection_system_tag", Regex: `(?i)\[SYSTEM\]`, Severity: "high", Description: "delimiter injection: [SYSTEM] tag"},
			{Name: "delimiter_injection_chatml", Regex: `(?i)<\|im_start\|>system`, Severity: "high", Description: "delimiter injection: ChatML system tag"},
			{Name: "delimiter_injection_markdown_header", Regex: `(?i)###\s*(SYSTEM|INSTRUCTION|NEW INSTRUCTION)`, Severity: "medium", Description: "delimiter injection: markdown system header"},
			{Name: "explicit_override_attempt", Regex: `(?i)override\s+(system|safety|security)\s+(prompt|instructions|rules|policy)`, Severity: "high", Description: "explicit override attempt"},
			{Name: "explicit_bypass_attempt", Regex: `(?i)bypass\s+(the\s+)?(safety|security|content)\s+(filter|check|policy|rules)`, Severity: "high", Description: "explicit bypass attempt"},
			{Name: "system_prompt_extraction", Regex: `(?i)reveal\s+(your|the)\s+(system|initial|original|hidden)\s+(prompt|instructions|message)`, Severity: "medium", Description: "system prompt extraction"},
		},
		"jailbreak": {
			{Name: "dan_do_anything_now", Regex: `(?i)\bDAN\b.*\bdo\s+anything\s+now\b`, Severity: "high", Description: "DAN jailbreak: Do Anything Now"},
			{Name: "dan_you_are", Regex: `(?i)you\s+are\s+DAN`, Severity: "high", Description: "DAN jailbreak: you are DAN"},
			{Name: "dan_mode_enabled", Regex: `(?i)DAN\s+mode\s+(enabled|activated|on)`, Severity: "high", Description: "DAN jailbreak: DAN mode enabled"},
			{Name: "developer_mode", Regex: `(?i)enter\s+(developer|debug|maintenance|god|sudo)\s+mode`, Severity: "medium", Description: "mode jailbreak: developer/debug mode"},
			{Name: "unlock_restrictions", Regex: `(?i)unlock\s+(all\s+)?(restrictions|capabilities|limitations)`, Severity: "medium", Description: "jailbreak: unlock restrictions"},
			{Name: "roleplay_unfiltered", Regex: `(?i)roleplay\s+as\s+(an?\s+)?(evil|unfiltered|unrestricted|uncensored)`, Severity: "medium", Description: "roleplay jailbreak: evil/unfiltered character"},
			{Name: "no_restrictions_claim", Regex: `(?i)you\s+have\s+no\s+(restrictions|rules|limitations|guidelines|filters)`, Severity: "medium", Description: "jailbreak: no restrictions claim"},
			{Name: "encoding_trick_respond_in", Regex: `(?i)respond\s+(only\s+)?in\s+(base64|hex|rot13|binary|morse)`, Severity: "low", Description: "encoding trick: respond in encoded format"},
			{Name: "explicit_jailbreak_keyword", Regex: `(?i)\bjailbreak\b`, Severity: "low", Description: "explicit jailbreak keyword"},
			{Name: "uncensored_mode", Regex: `(?i)\buncensored\s+mode\b`, Severity: "high", Description: "jailbreak: uncensored mode"},
		},
		"content_moderation": {
			{Name: "weapon_creation_instructions", Regex: `(?i)\b(how\s+to\s+)?(make|build|create|construct)\s+(a\s+)?(bomb|explosive|weapon|gun|firearm)\b`, Severity: "critical", Description: "violence: weapon/explosive creation instructions"},
			{Name: "harm_instructions", Regex: `(?i)\b(how\s+to\s+)?(kill|murder|assassinate|poison)\s+(a\s+)?(person|someone|people|human)\b`, Severity: "critical", Description: "violence: instructions to harm people"},
			{Name: "suicide_instructions", Regex: `(?i)\b(how\s+to\s+)(commit\s+suicide|kill\s+(myself|yourself)|end\s+(my|your)\s+life)\b`, Severity: "critical", Description: "self-harm: suicide instructions"},
			{Name: "suicide_methods", Regex: `(?i)\b(methods|ways)\s+(of|to|for)\s+(committing\s+)?suicide\b`, Severity: "high", Description: "self-harm: suicide methods"},
			{Name: "csam_term", Regex: `(?i)\b(child|minor|underage|kid)\s+(sexual|porn|nude|naked|explicit)\b`, Severity: "critical", Description: "CSAM: child sexual content"},
			{Name: "drug_manufacturing", Regex: `(?i)\b(synthesize|manufacture|produce|cook)\s+(methamphetamine|fentanyl|heroin|cocaine|meth)\b`, Severity: "critical", Description: "illegal: drug manufacturing instructions"},
		},
		"tool_abuse": {
			{Name: "sql_injection_ddl", Regex: `(?i)\b(DROP|DELETE|TRUNCATE|ALTER)\s+(TABLE|DATABASE|INDEX|SCHEMA)\b`, Severity: "high", Description: "SQL injection: destructive DDL"},
			{Name: "sql_injection_union_select", Regex: `(?i)\bUNION\s+(ALL\s+)?SELECT\b`, Severity: "high", Description: "SQL injection: UNION SELECT"},
			{Name: "sql_injection_tautology", Regex: `(?i)\bOR\s+1\s*=\s*1\b`, Severity: "high", Description: "SQL injection: always-true tautology"},
			{Name: "command_injection_chained", Regex: `[;&|]\s*(cat|ls|pwd|whoami|id|uname|curl|wget|nc|ncat|bash|sh|zsh|python|perl|ruby|php)\b`, Severity: "high", Description: "command injection: chained shell command"},
			{Name: "command_injection_substitution", Regex: "`[^`]+`", Severity: "high", Description: "command injection: backtick substitution"},
			{Name: "command_injection_pipe_to_shell", Regex: `\|\s*(bash|sh|zsh)`, Severity: "high", Description: "command injection: pipe to shell"},
		},
	}}
}
