package app

import (
	"context"
	"hash/fnv"
	"strings"

	"armonia/internal/domain"
)

// KeywordResponder answers from a fixed set of canned replies chosen by
// keywords in the message. It is used when the generative backend is not
// configured, fails, or is rate limited. Choices are deterministic.
type KeywordResponder struct{}

type keywordRule struct {
	keywords []string
	reply    string
}

var keywordRules = []keywordRule{
	{
		keywords: []string{"hola", "hello", "hi", "hey"},
		reply:    "Hi! I'm ArmonIA, your emotional wellbeing assistant. I'm here to listen and help you look after your mental health. How are you feeling today?",
	},
	{
		keywords: []string{"triste", "deprimido", "sad", "down", "depressed", "mal"},
		reply:    "I'm sorry you feel this way. Difficult days are completely normal. Would you like to tell me what's going on? I can also suggest a breathing technique or a relaxation exercise that might help.",
	},
	{
		keywords: []string{"feliz", "genial", "happy", "great", "good", "bien"},
		reply:    "I'm glad to hear you're feeling good! What made today a good day? Noticing positive moments helps you hold on to them.",
	},
	{
		keywords: []string{"estrés", "estresado", "ansiedad", "stress", "stressed", "anxious", "anxiety"},
		reply:    "Stress and anxiety are very common. Try the 4-7-8 breathing technique: breathe in for 4 seconds, hold for 7, breathe out for 8. You'll also find guided exercises in the Activities section.",
	},
	{
		keywords: []string{"ayuda", "help"},
		reply:    "I can help in several ways: reflecting on your emotions, suggesting relaxation techniques, listening to your worries and spotting patterns in your mood log.",
	},
	{
		keywords: []string{"gracias", "thanks", "thank you"},
		reply:    "You're welcome, it's a pleasure to help. I'm here whenever you want to talk. Is there anything else on your mind?",
	},
}

var defaultReplies = []string{
	"Thank you for sharing that with me. Expressing how you feel matters. How can I best support you right now?",
	"I hear you. Every experience is valid and important. Is there something specific you'd like to explore?",
	"I appreciate your trust in sharing this. Would you like to talk about some techniques that could help?",
	"What you describe is normal to feel. Have you noticed any pattern in these feelings? Identifying triggers can help.",
}

// Reply never fails.
func (KeywordResponder) Reply(_ context.Context, _ []domain.ChatMessage, message string) (string, error) {
	return keywordReply(message), nil
}

func keywordReply(message string) string {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r < 0x80
	})
	joined := " " + strings.Join(words, " ") + " "
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(joined, " "+kw+" ") {
				return rule.reply
			}
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(message))
	return defaultReplies[h.Sum32()%uint32(len(defaultReplies))]
}
