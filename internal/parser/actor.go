package parser

import "github.com/nari/actlog/pkg/core"

// DecodeActorIdentity builds an identity from a hex id field and a name field.
// The name is kept verbatim.
func DecodeActorIdentity(id, name string) (core.ActorIdentity, error) {
	v, err := U32FromHex(id)
	if err != nil {
		return core.ActorIdentity{}, err
	}
	return core.ActorIdentity{ID: v, Name: name}, nil
}
