package sequence

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const dynamoBackend = "dynamodb"

// DynamoAPI is the part of the DynamoDB client the counter uses
type DynamoAPI interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoCounter increments an item attribute with an atomic ADD. The item
// holds the last issued number and is created by the first call.
type DynamoCounter struct {
	client DynamoAPI
	table  string
	name   string
}

type dynamoSequence struct {
	Name  string `dynamodbav:"name"`
	Value int    `dynamodbav:"value"`
}

// NewDynamoCounter creates a counter for item name in table
func NewDynamoCounter(client DynamoAPI, table, name string) *DynamoCounter {
	return &DynamoCounter{client: client, table: table, name: name}
}

func (c *DynamoCounter) Next(ctx context.Context) (int, error) {
	out, err := c.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(c.table),
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: c.name},
		},
		UpdateExpression:         aws.String("ADD #v :one"),
		ExpressionAttributeNames: map[string]string{"#v": "value"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, persistErr(dynamoBackend, "update", err)
	}

	var seq dynamoSequence
	if err := attributevalue.UnmarshalMap(out.Attributes, &seq); err != nil {
		return 0, persistErr(dynamoBackend, "decode", err)
	}
	if seq.Value < 1 {
		return 0, persistErr(dynamoBackend, "decode", fmt.Errorf("unexpected value %d", seq.Value))
	}
	return seq.Value, nil
}
