package util

// DefaultBufSize is the standard buffer size handed out by [GetBuf],
// sized generously above the framing layer's fixed read chunks (the
// 4096-byte flush drain) so a single pooled buffer always covers them.
const DefaultBufSize = 32 * 1024
