// Package jsonprooftoken implements the JOSE Working Group draft suite for
// JSON Web Proofs (JWP), JSON Proof Algorithms (JPA), and JSON Proof
// Tokens (JPT): selective-disclosure credentials built on BBS+ signatures
// over BLS12-381.
//
// Package layout, leaves first:
//
//	encoding        base64url-nopad and canonical JSON leaf codecs
//	jwk             the OKP/Bls12381G2 JWK subset
//	header          order-preserving Issuer/Presentation protected headers
//	jpa             algorithm identifiers and the sign/verify/derive/verify
//	                dispatch table
//	crypto/bbsplus  the concrete BBS+ backend realizing jpa.Suite
//	jwp             the Issued -> Presented proof state machine
//	compact         the dot/tilde-separated wire codec
//	jpt             the claims-tree selective-disclosure facade
//
// A typical flow: an issuer calls jpt.Issue to sign a flattened claims
// object, a holder calls jpt.Present to derive a proof disclosing a chosen
// subset of claim paths, and a verifier calls jpt.VerifyAndReconstruct to
// check that proof and recover the disclosed subtree. compact.EncodeIssued/
// EncodePresented and their Decode counterparts move values across the
// wire in between.
package jsonprooftoken
