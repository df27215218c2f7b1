package telephony

// NCCO is a call control object: the ordered instruction set describing
// what an outbound call should say and do.
type NCCO []map[string]any

// NCCOConfig parameterizes script generation
type NCCOConfig struct {
	VoiceName string
	EventURL  string
	SocketURL string
}

// BuildNCCO generates the standard voice-agent NCCO: a spoken greeting
// followed by a websocket media connection for the live conversation.
func BuildNCCO(text string, cfg NCCOConfig) NCCO {
	voice := cfg.VoiceName
	if voice == "" {
		voice = "Kimberly"
	}

	ncco := NCCO{
		{
			"action":    "talk",
			"text":      text,
			"voiceName": voice,
		},
	}

	if cfg.SocketURL != "" {
		ncco = append(ncco, map[string]any{
			"action":   "connect",
			"eventUrl": []string{cfg.EventURL},
			"endpoint": []map[string]any{
				{
					"type":         "websocket",
					"uri":          cfg.SocketURL,
					"content-type": "audio/l16;rate=16000",
				},
			},
		})
	}

	return ncco
}
