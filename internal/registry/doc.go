// Package registry maps pass type names to the factories that build them.
//
// Pass types arrive in libraries. A Library is a named bundle of Modules,
// and each Module registers one or more pass types with their Info, an
// optional configuration Schema and a Factory. Graph descriptions name the
// libraries they need (for example "GBuffer.dll"); LoadLibrary resolves that
// name against the compiled-in catalog, which is how this engine stands in
// for dynamic plugin loading.
//
// Create validates a configuration mapping against the type's Schema before
// the factory ever sees it, so factories can decode with Decode and trust
// that keys exist and values have the declared cty types. Registration has
// no side effects beyond recording the factory.
package registry
