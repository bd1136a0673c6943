package hashtools

// content hashing for archive manifest entries.
// hash type is part of the printed value so manifests stay verifiable
// if the default ever changes.

import (
	"crypto/sha256"
	"hash"
	"io"
	"math/big"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sys/cpu"
)

const HashLength = 28

type HashTypeIDType byte

const (
	_ HashTypeIDType = iota // start with non-0

	SHA2_224    // faster where SHA2 crypto instructions exist
	BLAKE2b_224 // fastest on most 64bit CPUs without them
	BLAKE3_224

	hashTypeIDMax = iota - 1
)

type hasherFactoryType struct {
	newHasher func() hash.Hash
}

var hasherFactories = [hashTypeIDMax]hasherFactoryType{
	{newHasher: sha256.New224},
	{newHasher: func() hash.Hash { x, _ := blake2b.New(HashLength, nil); return x }},
	{newHasher: func() hash.Hash { return blake3.New() }},
}
var hashCtxPools [hashTypeIDMax]sync.Pool

var (
	defaultHashTypeID    HashTypeIDType
	defaultHasherFactory hasherFactoryType
	defaultHashCtxPool   *sync.Pool
)

type hashCtxType struct {
	h       hash.Hash
	copyBuf *[32 * 1024]byte
	x       big.Int
	strBuf  [44]byte // 28 hash bytes + 1 type byte fits base36 in 44
}

func getHashCtx(pool *sync.Pool, factory hasherFactoryType) *hashCtxType {
	s, _ := pool.Get().(*hashCtxType)
	if s != nil {
		s.h.Reset()
	} else {
		s = &hashCtxType{
			h:       factory.newHasher(),
			copyBuf: new([32 * 1024]byte),
		}
	}
	return s
}

func pickDefaultHash(typeID HashTypeIDType) {
	defaultHashTypeID = typeID
	defaultHasherFactory = hasherFactories[typeID-1]
	defaultHashCtxPool = &hashCtxPools[typeID-1]
}

func autoPickDefaultHash() {
	// ARM64 is the only arch where golang sha256 uses SHA2 instructions
	if cpu.ARM64.HasSHA2 {
		pickDefaultHash(SHA2_224)
		return
	}
	pickDefaultHash(BLAKE2b_224)
}

func init() { autoPickDefaultHash() }

// MakeFileHash returns the textural representation of content hash
// for use in manifests. It expects r to be positioned at 0.
func MakeFileHash(r io.Reader) (s string, e error) {

	hs := getHashCtx(defaultHashCtxPool, defaultHasherFactory)

	// first byte - hash type
	hs.strBuf[0] = byte(defaultHashTypeID)

	_, e = io.CopyBuffer(hs.h, r, hs.copyBuf[:])
	if e != nil {
		return
	}
	hs.h.Sum(hs.strBuf[1:][:0])

	// base36 print
	hs.x.SetBytes(hs.strBuf[:1+HashLength])
	xb := hs.x.Append(hs.strBuf[:0], 36)

	// flip so front bits vary more
	for i, j := 0, len(xb)-1; i < j; i, j = i+1, j-1 {
		xb[i], xb[j] = xb[j], xb[i]
	}

	s = string(xb)

	defaultHashCtxPool.Put(hs)

	return
}
