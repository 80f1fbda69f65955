package main

import "C"

//export currentReceiveAddress
func currentReceiveAddress() *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	addr := c.State().ReceiveAddress
	if addr == "" {
		return errCResponseWithCode(ErrCodeNoSession, "currentReceiveAddress requested without an open wallet")
	}
	return successCResponse(addr)
}

//export listSubaddresses
func listSubaddresses() *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	subaddrs, err := c.Subaddresses(ctx)
	if err != nil {
		return errResponse(err)
	}
	return jsonCResponse(subaddrs)
}

//export newSubaddress
func newSubaddress(cLabel *C.char) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	subaddr, err := c.CreateSubaddress(ctx, goString(cLabel))
	if err != nil {
		return errResponse(err)
	}
	return jsonCResponse(subaddr)
}

//export listCustomNodes
func listCustomNodes() *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	nodes := c.CustomNodes()
	if nodes == nil {
		nodes = []string{}
	}
	return jsonCResponse(nodes)
}

//export addCustomNode
func addCustomNode(cNode *C.char) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	if err := c.AddCustomNode(goString(cNode)); err != nil {
		return errResponse(err)
	}
	return successCResponse("node saved")
}

//export removeCustomNode
func removeCustomNode(cNode *C.char) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	if err := c.RemoveCustomNode(goString(cNode)); err != nil {
		return errResponse(err)
	}
	return successCResponse("node removed")
}
