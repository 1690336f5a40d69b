// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtlasRegAI/AtlasReg/services/regulator/session"
)

// exportTemplate renders a session transcript as a standalone HTML page.
// Bot responses and reasoning are already sanitized HTML produced by the
// render package; user messages are escaped by the template engine.
var exportTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>Session {{.Session.ID}}</title>
</head>
<body>
<h1>Transcription de session</h1>
<p><strong>Session :</strong> {{.Session.ID}}</p>
<p><strong>Créée le :</strong> {{.Session.CreatedAt.Format "2006-01-02 15:04:05"}}</p>
<p><strong>Équipe :</strong> {{.Session.TeamUsed}}</p>
<hr>
{{range .Messages}}
<section>
<h2>Question</h2>
<p>{{.UserMessage}}</p>
<h2>Réponse</h2>
<div>{{.BotResponse}}</div>
{{if .Reasoning}}
<h3>Raisonnement</h3>
<div>{{.Reasoning}}</div>
{{end}}
</section>
<hr>
{{end}}
</body>
</html>
`))

type exportMessage struct {
	UserMessage string
	BotResponse template.HTML
	Reasoning   template.HTML
}

// ExportSession renders the full session transcript as HTML.
func ExportSession(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sessionId")
		sess, err := store.Get(id)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Session non trouvée"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		messages := make([]exportMessage, len(sess.Messages))
		for i, m := range sess.Messages {
			messages[i] = exportMessage{
				UserMessage: m.UserMessage,
				BotResponse: template.HTML(m.BotResponse),
				Reasoning:   template.HTML(m.Reasoning),
			}
		}

		var buf bytes.Buffer
		if err := exportTemplate.Execute(&buf, gin.H{
			"Session":  sess,
			"Messages": messages,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render transcript"})
			return
		}

		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	}
}
