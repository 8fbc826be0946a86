package sig

//go:generate mockgen -package=sigmock -destination=sigmock/verifier.go github.com/MetalBlockchain/starchain/sig Verifier
