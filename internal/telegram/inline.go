package telegram

import (
	"maps"
	"sync"
)

// InlineListener answers an inline query. It returns nil when the query is
// not its business; any non-nil slice, even empty, is used as the answer.
type InlineListener func(query map[string]any) []map[string]any

// InlineRegistry holds the listeners consulted for inline queries. The most
// recently registered listener is asked first.
type InlineRegistry struct {
	mu        sync.RWMutex
	listeners []InlineListener
	cacheTime *int
}

// NewInlineRegistry creates an empty registry. cacheTime, when set, is sent
// with every answer.
func NewInlineRegistry(cacheTime *int) *InlineRegistry {
	return &InlineRegistry{cacheTime: cacheTime}
}

// Listen registers fn ahead of every existing listener.
func (r *InlineRegistry) Listen(fn InlineListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append([]InlineListener{fn}, r.listeners...)
}

// Len returns the number of registered listeners.
func (r *InlineRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

// Answer builds the answerInlineQuery envelope for query using the first
// listener that claims it.
func (r *InlineRegistry) Answer(query map[string]any) Envelope {
	r.mu.RLock()
	listeners := r.listeners
	r.mu.RUnlock()

	results := []any{}
	for _, fn := range listeners {
		if found := fn(query); found != nil {
			results = make([]any, len(found))
			for i, res := range found {
				results[i] = res
			}
			break
		}
	}

	params := map[string]any{
		"inline_query_id": str(query["id"]),
		"results":         results,
	}
	if r.cacheTime != nil {
		params["cache_time"] = *r.cacheTime
	}
	return Envelope{Endpoint: EndpointAnswerInlineQuery, Params: params}
}

// NewArticle builds an article result from data. A message_text entry is
// also sent as HTML input_message_content.
func NewArticle(data map[string]any) map[string]any {
	article := maps.Clone(data)
	if article == nil {
		article = map[string]any{}
	}
	if text, ok := article["message_text"]; ok {
		article["input_message_content"] = map[string]any{
			"message_text": text,
			"parse_mode":   "HTML",
		}
	}
	article["type"] = "article"
	return article
}
