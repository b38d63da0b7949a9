/*
Package api implements the client for the ScrapeWorks control-plane REST API.

It owns the request-execution pipeline: credential resolution per attempt,
per-attempt deadlines, retry with exponential backoff, and classification of
upstream failures into typed errors. Typed methods (agents, runs, schedules,
spaces, billing, analytics) sit on top of a single executor and define which
operations are idempotent.
*/
package api
