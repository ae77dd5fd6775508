// Package yahoo fetches quotes, close histories and market screener
// categories from the public Yahoo Finance JSON endpoints.
package yahoo
