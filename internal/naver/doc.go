// Package naver integrates with Naver: scraping exchange-rate headlines from
// Naver Finance and publishing posts to a Naver blog.
package naver
