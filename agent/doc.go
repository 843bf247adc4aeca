// Package agent contains BaseAgent, the shared lifecycle/state machine every
// worker embeds, and the domain worker stubs (vitals, mood, counselor,
// alert, scheduler, sleep, exercise, nutrition, social, digital twin).
//
// The workers are simple computation stubs: the coordination value lives in
// the uniform contract they expose (core.Agent), not in the canned content
// they generate. BaseAgent enforces the correctness-critical pieces: bounded
// short-term memory and activity log (drop-oldest), the
// Idle→Processing→Idle transition around every call, and rejection of calls
// once an agent is Dead.
package agent
