// Package sitechat crawls a single website into a local page store and
// answers natural language questions about it.
//
// A crawl session walks one domain (including subdomains), extracts the
// visible text of every page, and stops once a global character budget is
// reached. Questions are answered by handing the text of every stored page,
// labeled by URL, to a language model that returns a structured answer and
// the URLs it used.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, goquery/).
package sitechat
