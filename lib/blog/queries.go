package blog

const queryGetRating = `
query GetRating($postId: String!) {
  blog {
    getRating(postId: $postId) {
      postId
      averageRating
      ratingCount
    }
  }
}`

const mutationRatePost = `
mutation RatePost($postId: String!, $rating: Int!) {
  blog {
    ratePost(postId: $postId, rating: $rating) {
      postId
      averageRating
      ratingCount
    }
  }
}`

const queryGetComments = `
query GetComments($postId: String!) {
  blog {
    getComments(postId: $postId) {
      postId
      comments {
        uuid
        authorName
        body
        created
        status
      }
      total
    }
  }
}`

const mutationCreateComment = `
mutation CreateComment($postId: String!, $authorName: String!, $authorEmail: String!, $body: String!) {
  blog {
    createComment(postId: $postId, authorName: $authorName, authorEmail: $authorEmail, body: $body) {
      uuid
      status
      message
    }
  }
}`

const mutationModerateComment = `
mutation ModerateComment($commentId: String!, $status: String!) {
  blog {
    moderateComment(commentId: $commentId, status: $status) {
      uuid
      status
      message
    }
  }
}`
